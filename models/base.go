package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/zone_expense_backend/utils"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	ID   string
	Role Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// PrincipalFromContext reads what the auth middleware stored.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	id, ok := utils.GetUserIdFromContext(ctx)
	if !ok || id == "" {
		return Principal{}, false
	}
	role, _ := utils.GetRoleFromContext(ctx)
	return Principal{ID: id, Role: Role(role)}, true
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// NullTime scans aggregate date columns. MySQL returns time.Time with
// parseTime, sqlite returns text for MAX() over a datetime column.
type NullTime struct {
	Time  time.Time
	Valid bool
}

var nullTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (n *NullTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*n = NullTime{}
		return nil
	case time.Time:
		*n = NullTime{Time: v, Valid: true}
		return nil
	case []byte:
		return n.parse(string(v))
	case string:
		return n.parse(v)
	}
	return fmt.Errorf("cannot scan %T into NullTime", value)
}

func (n *NullTime) parse(s string) error {
	for _, layout := range nullTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*n = NullTime{Time: t, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as time", s)
}

func (n NullTime) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Time, nil
}

func (n NullTime) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func (n NullTime) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time)
}

// InputTime accepts RFC 3339 timestamps as well as bare dates in request bodies.
type InputTime struct {
	time.Time
}

var inputTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (t *InputTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range inputTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}
