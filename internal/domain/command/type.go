package command

// Type identifies the kind of UI command
type Type string

const (
	TypeOpenSection Type = "section.open"
	TypeEditBill    Type = "bill.edit"
	TypeAccept      Type = "bill.accept"
	TypeRefuse      Type = "bill.refuse"
	TypeViewProof   Type = "proof.view"
)

// String returns the string representation of the command type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the command type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeOpenSection,
		TypeEditBill,
		TypeAccept,
		TypeRefuse,
		TypeViewProof:
		return true
	default:
		return false
	}
}
