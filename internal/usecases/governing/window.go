package governing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	rateWindow      = time.Minute
	bucketRetention = 48
)

type rateSample struct {
	at     time.Time
	tokens int64
}

// minuteWindow é a janela deslizante usada na taxa por minuto
type minuteWindow struct {
	samples []rateSample
}

func (w *minuteWindow) add(now time.Time, tokens int64) {
	w.samples = append(w.samples, rateSample{at: now, tokens: tokens})
	w.trim(now)
}

func (w *minuteWindow) rate(now time.Time) (tokens int64, calls int) {
	w.trim(now)
	for _, s := range w.samples {
		tokens += s.tokens
	}
	return tokens, len(w.samples)
}

func (w *minuteWindow) trim(now time.Time) {
	cutoff := now.Add(-rateWindow)
	i := 0
	for i < len(w.samples) && !w.samples[i].at.After(cutoff) {
		i++
	}
	w.samples = w.samples[i:]
}

// UsageBucket é o consumo agregado de uma hora
type UsageBucket struct {
	Hour   time.Time       `json:"hour"`
	Tokens int64           `json:"tokens"`
	Cost   decimal.Decimal `json:"cost"`
	Calls  int64           `json:"calls"`
}

// hourlyUsage guarda as últimas bucketRetention horas
type hourlyUsage struct {
	buckets map[int64]*UsageBucket
}

func newHourlyUsage() *hourlyUsage {
	return &hourlyUsage{buckets: make(map[int64]*UsageBucket)}
}

func (h *hourlyUsage) add(now time.Time, tokens int64, cost decimal.Decimal) {
	hour := now.Truncate(time.Hour)
	bucket, ok := h.buckets[hour.Unix()]
	if !ok {
		bucket = &UsageBucket{Hour: hour.UTC()}
		h.buckets[hour.Unix()] = bucket
	}
	bucket.Tokens += tokens
	bucket.Cost = bucket.Cost.Add(cost)
	bucket.Calls++

	oldest := hour.Add(-bucketRetention * time.Hour).Unix()
	for key := range h.buckets {
		if key <= oldest {
			delete(h.buckets, key)
		}
	}
}

// series devolve as últimas n horas em ordem cronológica, com horas vazias zeradas
func (h *hourlyUsage) series(now time.Time, hours int) []UsageBucket {
	if hours <= 0 {
		hours = 24
	}
	if hours > bucketRetention {
		hours = bucketRetention
	}

	current := now.Truncate(time.Hour)
	result := make([]UsageBucket, 0, hours)
	for i := hours - 1; i >= 0; i-- {
		hour := current.Add(-time.Duration(i) * time.Hour)
		if bucket, ok := h.buckets[hour.Unix()]; ok {
			result = append(result, *bucket)
			continue
		}
		result = append(result, UsageBucket{Hour: hour.UTC(), Cost: decimal.Zero})
	}
	return result
}

func (h *hourlyUsage) snapshot() []UsageBucket {
	result := make([]UsageBucket, 0, len(h.buckets))
	for _, bucket := range h.buckets {
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Hour.Before(result[j].Hour) })
	return result
}

func (h *hourlyUsage) restore(buckets []UsageBucket) {
	h.buckets = make(map[int64]*UsageBucket, len(buckets))
	for i := range buckets {
		bucket := buckets[i]
		h.buckets[bucket.Hour.Truncate(time.Hour).Unix()] = &bucket
	}
}
