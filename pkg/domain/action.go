package domain

import dErrors "ledger/pkg/domain-errors"

// Action is the kind of operation performed on subject data.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionShare  Action = "share"
	ActionExport Action = "export"
)

var validActions = map[Action]bool{
	ActionRead:   true,
	ActionWrite:  true,
	ActionUpdate: true,
	ActionDelete: true,
	ActionShare:  true,
	ActionExport: true,
}

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid action: "+s)
	}
	return a, nil
}

func (a Action) IsValid() bool {
	return validActions[a]
}

func (a Action) String() string {
	return string(a)
}
