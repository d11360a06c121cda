package memworld

import (
	"context"
	"sync"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/log"
)

// Grant is one recorded reward grant.
type Grant struct {
	Player    model.PlayerID
	Type      model.RewardType
	Amount    int64
	ItemGroup string
}

// Grants records reward grants. Players marked full reject items.
type Grants struct {
	mu      sync.Mutex
	granted []Grant
	full    map[model.PlayerID]bool
}

func NewGrants() *Grants {
	return &Grants{full: make(map[model.PlayerID]bool)}
}

// SetInventoryFull toggles the inventory-full state of a player.
func (g *Grants) SetInventoryFull(player model.PlayerID, full bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.full[player] = full
}

func (g *Grants) record(gr Grant) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.granted = append(g.granted, gr)
}

func (g *Grants) AddExperience(_ context.Context, player model.PlayerID, amount int64) error {
	g.record(Grant{Player: player, Type: model.RewardExperience, Amount: amount})
	return nil
}

func (g *Grants) AddMoney(_ context.Context, player model.PlayerID, amount int64) error {
	g.record(Grant{Player: player, Type: model.RewardMoney, Amount: amount})
	return nil
}

func (g *Grants) GiveItem(_ context.Context, player model.PlayerID, itemGroup string) error {
	g.mu.Lock()
	full := g.full[player]
	g.mu.Unlock()
	if full {
		return ports.ErrInventoryFull
	}
	g.record(Grant{Player: player, Type: model.RewardItem, Amount: 1, ItemGroup: itemGroup})
	return nil
}

// Granted returns every grant so far.
func (g *Grants) Granted() []Grant {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Grant(nil), g.granted...)
}

// For returns the grants of one player.
func (g *Grants) For(player model.PlayerID) []Grant {
	var out []Grant
	for _, gr := range g.Granted() {
		if gr.Player == player {
			out = append(out, gr)
		}
	}
	return out
}

// Messenger records messages per player. Offline players get ErrPlayerOffline.
type Messenger struct {
	mu      sync.Mutex
	inbox   map[model.PlayerID][]ports.Message
	offline map[model.PlayerID]bool
	echo    bool
}

// NewMessenger creates a recording messenger. With echo set every message
// is also logged at debug level, which is what dry-run mode shows.
func NewMessenger(echo bool) *Messenger {
	return &Messenger{
		inbox:   make(map[model.PlayerID][]ports.Message),
		offline: make(map[model.PlayerID]bool),
		echo:    echo,
	}
}

// SetOffline marks a client as disconnected.
func (m *Messenger) SetOffline(player model.PlayerID, offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline[player] = offline
}

func (m *Messenger) Send(_ context.Context, player model.PlayerID, msg ports.Message) error {
	m.mu.Lock()
	if m.offline[player] {
		m.mu.Unlock()
		return ports.ErrPlayerOffline
	}
	m.inbox[player] = append(m.inbox[player], msg)
	m.mu.Unlock()

	if m.echo {
		logger := log.WithComponent("memworld")
		logger.Debug().
			Str(log.FieldPlayer, string(player)).
			Str("kind", string(msg.Kind)).
			Msg(msg.Text)
	}
	return nil
}

// Inbox returns the messages delivered to a player.
func (m *Messenger) Inbox(player model.PlayerID) []ports.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Message(nil), m.inbox[player]...)
}

// Count returns how many messages of kind a player received.
func (m *Messenger) Count(player model.PlayerID, kind ports.MessageKind) int {
	n := 0
	for _, msg := range m.Inbox(player) {
		if msg.Kind == kind {
			n++
		}
	}
	return n
}

var (
	_ ports.RewardGrants = (*Grants)(nil)
	_ ports.Messenger    = (*Messenger)(nil)
)
