package agent

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"inboxpilot/internal/config"
)

// actions is the fixed triage action set. Iteration order doubles as the
// argmax tie-break for action selection (first declared wins).
var actions = []string{"Reply", "Archive", "Forward", "Mark Important", "Delete", "Spam"}

// Actions returns a copy of the triage action set.
func Actions() []string {
	out := make([]string, len(actions))
	copy(out, actions)
	return out
}

// Agent is the classification-and-learning engine. One instance is
// constructed at process start and shared by request handlers; the mutex
// serializes predict/feedback calls since the host serves requests
// concurrently.
type Agent struct {
	mu sync.Mutex

	learningRate       float64
	discountFactor     float64
	epsilon            float64
	maxFeedbackHistory int

	memory *Memory
	store  Store

	rng *rand.Rand
	now func() time.Time
}

// New constructs an agent and hydrates its memory from the store. A load
// failure falls back to empty memory rather than erroring.
func New(cfg config.AgentConfig, store Store) *Agent {
	a := &Agent{
		learningRate:       cfg.LearningRate,
		discountFactor:     cfg.DiscountFactor,
		epsilon:            cfg.Epsilon,
		maxFeedbackHistory: cfg.Retention.MaxFeedbackHistory,
		store:              store,
		rng:                rand.New(rand.NewSource(time.Now().UnixNano())),
		now:                time.Now,
	}
	a.memory = NewMemory()
	if store != nil {
		mem, err := store.Load()
		if err != nil {
			log.Printf("[Agent] WARNING: failed to load memory, starting empty: %v", err)
		} else if mem != nil {
			ensureMemory(mem)
			a.memory = mem
			log.Printf("[Agent] Memory loaded: %d states, %d senders, %d keywords, %d feedback entries",
				len(mem.QTable), len(mem.SenderMemory), len(mem.KeywordMemory), len(mem.FeedbackHistory))
		}
	}
	return a
}

// ensureMemory initializes any nil maps after deserialization.
func ensureMemory(m *Memory) {
	if m.QTable == nil {
		m.QTable = make(map[string]map[string]float64)
	}
	if m.SenderMemory == nil {
		m.SenderMemory = make(map[string]*SenderRecord)
	}
	if m.KeywordMemory == nil {
		m.KeywordMemory = make(map[string]*KeywordRecord)
	}
	if m.TopicMemory == nil {
		m.TopicMemory = make(map[string]*TopicRecord)
	}
	if m.FeedbackHistory == nil {
		m.FeedbackHistory = []FeedbackEntry{}
	}
	for _, rec := range m.SenderMemory {
		if rec.ActionCounts == nil {
			rec.ActionCounts = make(map[string]int)
		}
	}
	for _, rec := range m.KeywordMemory {
		if rec.ActionCounts == nil {
			rec.ActionCounts = make(map[string]int)
		}
	}
}

// qValue reads a value-table entry, defaulting to 0.0 when absent.
func (a *Agent) qValue(stateKey, action string) float64 {
	if row, ok := a.memory.QTable[stateKey]; ok {
		return row[action]
	}
	return 0.0
}

func (a *Agent) setQValue(stateKey, action string, v float64) {
	row, ok := a.memory.QTable[stateKey]
	if !ok {
		row = make(map[string]float64, len(actions))
		a.memory.QTable[stateKey] = row
	}
	row[action] = v
}

func (a *Agent) sender(name string) *SenderRecord {
	rec, ok := a.memory.SenderMemory[name]
	if !ok {
		rec = &SenderRecord{ActionCounts: make(map[string]int)}
		a.memory.SenderMemory[name] = rec
	}
	return rec
}

func (a *Agent) keyword(token string) *KeywordRecord {
	rec, ok := a.memory.KeywordMemory[token]
	if !ok {
		rec = &KeywordRecord{ActionCounts: make(map[string]int), ConfidenceScores: []float64{}}
		a.memory.KeywordMemory[token] = rec
	}
	return rec
}

// mostCommonAction returns the most frequent action for a sender record.
// Equal counts resolve in declared action order.
func mostCommonAction(rec *SenderRecord) (string, int) {
	best := ""
	bestCount := 0
	for _, act := range actions {
		if c := rec.ActionCounts[act]; c > bestCount {
			best = act
			bestCount = c
		}
	}
	return best, bestCount
}

// saveMemory flushes the whole memory to the store. Failures are logged and
// the call continues in-memory-only.
func (a *Agent) saveMemory() {
	if a.store == nil {
		return
	}
	if err := a.store.Save(a.memory); err != nil {
		log.Printf("[Agent] WARNING: failed to persist memory: %v", err)
	}
}
