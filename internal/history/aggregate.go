package history

import "time"

// Activity is a single handled load, the minimal input needed to build
// hourly samples.
type Activity struct {
	At    time.Time
	Units float64
}

// FromActivity groups activity records by calendar day and hour. Each record
// counts as one stop; velocity is the units handled in that hour. The sample
// timestamp is that of the first record seen for the bucket.
func FromActivity(records []Activity) []Sample {
	type key struct {
		y    int
		m    time.Month
		d    int
		hour int
	}
	index := make(map[key]int)
	var out []Sample

	for _, r := range records {
		if r.At.IsZero() {
			continue
		}
		y, m, d := r.At.Date()
		k := key{y, m, d, r.At.Hour()}
		i, ok := index[k]
		if !ok {
			out = append(out, Sample{Timestamp: r.At, Hour: r.At.Hour()})
			i = len(out) - 1
			index[k] = i
		}
		out[i].Units += r.Units
		out[i].Stops++
	}
	return out
}
