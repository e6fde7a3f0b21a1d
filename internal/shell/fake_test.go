package shell

import (
	"fmt"

	"koharu-go/internal/update"
)

// scriptedPrompter answers prompts from a fixed script and records the
// messages it was asked.
type scriptedPrompter struct {
	selects   []int
	confirms  []bool
	pauses    int
	asked     []string
	interrupt bool
}

func (p *scriptedPrompter) Select(message string, options []string) (int, error) {
	p.asked = append(p.asked, message)
	if p.interrupt {
		return 0, update.ErrInterrupted
	}
	if len(p.selects) == 0 {
		return 0, fmt.Errorf("unexpected select %q", message)
	}
	idx := p.selects[0]
	p.selects = p.selects[1:]
	return idx, nil
}

func (p *scriptedPrompter) Confirm(message string, def bool) (bool, error) {
	p.asked = append(p.asked, message)
	if p.interrupt {
		return false, update.ErrInterrupted
	}
	if len(p.confirms) == 0 {
		return false, fmt.Errorf("unexpected confirm %q", message)
	}
	ok := p.confirms[0]
	p.confirms = p.confirms[1:]
	return ok, nil
}

func (p *scriptedPrompter) Password(message string) (string, error) {
	p.asked = append(p.asked, message)
	return "secret", nil
}

func (p *scriptedPrompter) Pause(message string) error {
	p.asked = append(p.asked, message)
	p.pauses++
	return nil
}
