package services

import (
	"fmt"

	"github.com/fluentpath/roadmap_client/model"
)

// MiniGameHub sequences the mini-game chain of one activity. Unlike
// activities and days, mini-games inside a chain are not sequence-gated:
// Select can jump anywhere, Advance walks forward until the chain is
// exhausted.
type MiniGameHub struct {
	miniGames     []model.MiniGame
	selectedIndex int
}

// NewMiniGameHub builds a hub over a non-empty chain. Content-only
// activities (empty chains) never instantiate a hub.
func NewMiniGameHub(miniGames []model.MiniGame) *MiniGameHub {
	return &MiniGameHub{miniGames: miniGames}
}

// Advance moves to the next mini-game. Returns true when the chain is
// exhausted, which is the signal that completes the owning activity.
func (h *MiniGameHub) Advance() bool {
	if h.selectedIndex < len(h.miniGames)-1 {
		h.selectedIndex++
		return false
	}
	return true
}

func (h *MiniGameHub) Select(i int) error {
	if i < 0 || i >= len(h.miniGames) {
		return fmt.Errorf("mini-game index %d out of range [0,%d)", i, len(h.miniGames))
	}
	h.selectedIndex = i
	return nil
}

func (h *MiniGameHub) SelectedIndex() int {
	return h.selectedIndex
}

func (h *MiniGameHub) Games() []model.MiniGame {
	return h.miniGames
}
