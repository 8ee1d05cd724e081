package catalog

// Status is the server-owned listing lifecycle state. The client never
// transitions a listing directly; it only renders the state and gates
// actions (a sold listing cannot be messaged about, for example).
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusSold    Status = "SOLD"
	StatusExpired Status = "EXPIRED"
	StatusDeleted Status = "DELETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusExpired, StatusDeleted:
		return true
	}
	return false
}

// Open reports whether the listing still accepts buyer contact.
func (s Status) Open() bool {
	return s == StatusActive
}

func (s Status) String() string {
	return string(s)
}
