package melee

import (
	"errors"

	"github.com/hyeon-dev/regichess/internal/domain"
	"github.com/hyeon-dev/regichess/internal/msgcat"
	"github.com/hyeon-dev/regichess/pkg/meleedto"
)

// Messages renders the user-facing text for submissions and events from
// the msgcat catalog. All rendering is best-effort: a broken template
// falls back to the plain error or an empty string rather than failing
// the operation it decorates.
type Messages struct {
	cat *msgcat.Catalog
}

func NewMessages(cat *msgcat.Catalog) *Messages {
	return &Messages{cat: cat}
}

func rejectKey(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "reject.not_found"
	case errors.Is(err, ErrIllegalMove):
		return "reject.illegal"
	case errors.Is(err, ErrCooldown):
		return "reject.cooldown"
	case errors.Is(err, ErrConflict):
		return "reject.conflict"
	case errors.Is(err, ErrAlreadyFinished):
		return "reject.finished"
	default:
		return "reject.bad_input"
	}
}

// Reject renders the rejection text for a failed submission.
func (m *Messages) Reject(err error, gameID, move string, winner domain.Team) string {
	if m == nil || m.cat == nil {
		return err.Error()
	}
	out, rerr := m.cat.Render(rejectKey(err), map[string]string{
		"GameID": gameID,
		"Move":   move,
		"Winner": string(winner),
	})
	if rerr != nil {
		return err.Error()
	}
	return out
}

// DomainError maps err onto its stable code with the catalog text as the
// message.
func (m *Messages) DomainError(err error, gameID, move string, winner domain.Team) meleedto.DomainError {
	de := AsDomainError(err)
	de.Message = m.Reject(err, gameID, move, winner)
	return de
}

// Result renders the announcement for a committed move or win.
func (m *Messages) Result(res *SubmitResult) string {
	if m == nil || m.cat == nil || res == nil || res.Entry == nil {
		return ""
	}
	e := res.Entry
	if res.Win {
		out, err := m.cat.Render("result.win", map[string]string{
			"Username": e.Username,
			"Winner":   string(e.Team),
			"Loser":    string(e.Team.Opponent()),
		})
		if err != nil {
			return ""
		}
		return out
	}
	if e.CapturedKind != "" {
		out, err := m.cat.Render("result.capture", map[string]string{
			"Username": e.Username,
			"SAN":      e.SAN,
			"Captured": e.CapturedKind,
		})
		if err == nil {
			return out
		}
	}
	out, err := m.cat.Render("result.move", map[string]string{
		"Username": e.Username,
		"SAN":      e.SAN,
	})
	if err != nil {
		return ""
	}
	return out
}

// Started renders the announcement for the waiting → playing flip.
func (m *Messages) Started() string {
	if m == nil || m.cat == nil {
		return ""
	}
	out, err := m.cat.Render("game.started", nil)
	if err != nil {
		return ""
	}
	return out
}
