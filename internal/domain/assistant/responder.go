package assistant

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnknownKnowledgeBase is returned for a knowledge base name that is not
// registered.
var ErrUnknownKnowledgeBase = errors.New("unknown knowledge base")

// Reply is an assistant answer to one message.
type Reply struct {
	KnowledgeBase string    `json:"knowledge_base"`
	Text          string    `json:"text"`
	Category      Category  `json:"category"`
	Trigger       string    `json:"trigger,omitempty"`
	Matched       bool      `json:"matched"`
	Spoken        bool      `json:"spoken"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewRand returns the source used for fallback replies. A zero seed is
// replaced by the current time.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Responder routes messages to knowledge bases. It is safe for concurrent
// use; the shared random source is guarded by mu.
type Responder struct {
	mu     sync.Mutex
	rng    *rand.Rand
	bases  map[string]*KnowledgeBase
	order  []string
	logger zerolog.Logger
	now    func() time.Time
}

// NewResponder registers bases, or the general and nursing bases when none
// are given.
func NewResponder(rng *rand.Rand, logger zerolog.Logger, bases ...*KnowledgeBase) *Responder {
	if len(bases) == 0 {
		bases = []*KnowledgeBase{General(), Nursing()}
	}
	r := &Responder{
		rng:    rng,
		bases:  make(map[string]*KnowledgeBase, len(bases)),
		logger: logger.With().Str("component", "assistant").Logger(),
		now:    time.Now,
	}
	for _, kb := range bases {
		r.bases[kb.Name] = kb
		r.order = append(r.order, kb.Name)
	}
	return r
}

func (r *Responder) SetClock(now func() time.Time) {
	r.now = now
}

func (r *Responder) KnowledgeBase(name string) (*KnowledgeBase, error) {
	kb, ok := r.bases[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKnowledgeBase, name)
	}
	return kb, nil
}

// KnowledgeBases lists the registered bases in registration order.
func (r *Responder) KnowledgeBases() []*KnowledgeBase {
	out := make([]*KnowledgeBase, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.bases[name])
	}
	return out
}

// Respond answers message from the named knowledge base.
func (r *Responder) Respond(kbName, message string) (Reply, error) {
	kb, err := r.KnowledgeBase(kbName)
	if err != nil {
		return Reply{}, err
	}
	if strings.TrimSpace(message) == "" {
		return Reply{}, fmt.Errorf("message is required")
	}

	reply := Reply{KnowledgeBase: kb.Name, Timestamp: r.now()}
	if rule, ok := kb.Match(message); ok {
		reply.Text = rule.Response
		reply.Category = rule.Category
		reply.Trigger = rule.Trigger
		reply.Matched = true
	} else {
		r.mu.Lock()
		reply.Text = kb.Fallback(r.rng)
		r.mu.Unlock()
		reply.Category = CategoryGeneral
	}

	r.logger.Debug().
		Str("knowledge_base", kb.Name).
		Bool("matched", reply.Matched).
		Str("trigger", reply.Trigger).
		Str("category", string(reply.Category)).
		Msg("assistant reply")
	return reply, nil
}
