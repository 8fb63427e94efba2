// models/enums.go
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Status is the lending state of a tool. Only the four canonical values are
// ever written; legacy spellings found in older databases are normalized on read.
type Status string

const (
	StatusPlaceholder Status = "placeholder"
	StatusAvailable   Status = "available"
	StatusCheckedOut  Status = "checked-out"
	StatusLoaned      Status = "loaned"
)

var statusAliases = map[string]Status{
	"placeholder": StatusPlaceholder,
	"pendente":    StatusPlaceholder,
	"available":   StatusAvailable,
	"disponivel":  StatusAvailable,
	"disponível":  StatusAvailable,
	"checked-out": StatusCheckedOut,
	"checked_out": StatusCheckedOut,
	"checkedout":  StatusCheckedOut,
	"em_uso":      StatusCheckedOut,
	"em uso":      StatusCheckedOut,
	"loaned":      StatusLoaned,
	"emprestada":  StatusLoaned,
	"emprestado":  StatusLoaned,
}

// ParseStatus maps a canonical or legacy status string to Status.
func ParseStatus(s string) (Status, error) {
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Lent reports whether the tool is currently out (checked-out or loaned).
func (s Status) Lent() bool { return s == StatusCheckedOut || s == StatusLoaned }

func (s Status) Value() (driver.Value, error) {
	if _, err := ParseStatus(string(s)); err != nil {
		return nil, err
	}
	return string(s), nil
}

func (s *Status) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*s = ""
		return nil
	default:
		return fmt.Errorf("status: unsupported type %T", src)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ModeKind is an operator intent awaiting a scan.
type ModeKind string

const (
	ModeRegister ModeKind = "register"
	ModeCheckOut ModeKind = "check-out"
	ModeReturn   ModeKind = "return"
	ModeIdle     ModeKind = "idle"
)

var modeAliases = map[string]ModeKind{
	"register":  ModeRegister,
	"registrar": ModeRegister,
	"cadastro":  ModeRegister,
	"cadastrar": ModeRegister,
	"bind":      ModeRegister,

	"check-out": ModeCheckOut,
	"checkout":  ModeCheckOut,
	"check_out": ModeCheckOut,
	"retirar":   ModeCheckOut,
	"retirada":  ModeCheckOut,

	"return":    ModeReturn,
	"devolver":  ModeReturn,
	"devolucao": ModeReturn,
	"devolução": ModeReturn,

	"idle":   ModeIdle,
	"none":   ModeIdle,
	"ocioso": ModeIdle,
}

// ParseModeKind accepts the canonical kinds and the device's legacy verbs
// (retirar, devolver, cadastro, ...).
func ParseModeKind(s string) (ModeKind, error) {
	if k, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Lending reports whether the kind is served by a status transition.
func (k ModeKind) Lending() bool { return k == ModeCheckOut || k == ModeReturn }

// Action is the verb recorded on an audit log entry.
type Action string

const (
	ActionBind     Action = "bind"
	ActionCheckOut Action = "check-out"
	ActionReturn   Action = "return"
	ActionRawScan  Action = "raw-scan"
)

// ActionFor returns the log action matching a lending kind.
func ActionFor(k ModeKind) Action {
	switch k {
	case ModeCheckOut:
		return ActionCheckOut
	case ModeReturn:
		return ActionReturn
	case ModeRegister:
		return ActionBind
	}
	return ActionRawScan
}
