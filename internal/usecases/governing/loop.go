package governing

import (
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// sweepEvery controla a limpeza global das impressões digitais expiradas
const sweepEvery = 256

type fingerprint [blake2b.Size256]byte

// fingerprintOf normaliza caixa e espaços antes do hash, então chamadas
// quase idênticas caem na mesma impressão digital.
func fingerprintOf(agent, input string) fingerprint {
	normalized := strings.ToLower(strings.TrimSpace(agent)) + "\x00" + strings.Join(strings.Fields(strings.ToLower(input)), " ")
	return blake2b.Sum256([]byte(normalized))
}

// loopDetector conta chamadas com a mesma impressão digital dentro da janela
type loopDetector struct {
	seen         map[fingerprint][]time.Time
	observations int
}

func newLoopDetector() *loopDetector {
	return &loopDetector{seen: make(map[fingerprint][]time.Time)}
}

// observe registra a chamada e devolve quantas iguais existem na janela, ela inclusa
func (d *loopDetector) observe(fp fingerprint, now time.Time, window time.Duration) int {
	d.observations++
	if d.observations%sweepEvery == 0 {
		d.sweep(now, window)
	}

	kept := prune(d.seen[fp], now, window)
	kept = append(kept, now)
	d.seen[fp] = kept

	return len(kept)
}

func (d *loopDetector) sweep(now time.Time, window time.Duration) {
	for fp, times := range d.seen {
		kept := prune(times, now, window)
		if len(kept) == 0 {
			delete(d.seen, fp)
			continue
		}
		d.seen[fp] = kept
	}
}

func (d *loopDetector) reset() {
	d.seen = make(map[fingerprint][]time.Time)
	d.observations = 0
}

func prune(times []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}
