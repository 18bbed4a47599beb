package match

import "fmt"

// Field identifies a profile attribute considered by the [Matcher].
type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldUserName
	FieldVaultName
	FieldSSHKeyTitle
)

// FieldWeights holds the relative importance of each [Field] in the weighted
// profile score. Name and email weights are calibrated; the rest stay at or
// below the email weight so they refine, rather than dominate, a match.
var FieldWeights = map[Field]float64{
	FieldName:        1.0,
	FieldEmail:       0.6,
	FieldUserName:    0.5,
	FieldVaultName:   0.4,
	FieldSSHKeyTitle: 0.3,
}

var fieldNames = map[Field]string{
	FieldName:        "name",
	FieldEmail:       "email",
	FieldUserName:    "user_name",
	FieldVaultName:   "vault_name",
	FieldSSHKeyTitle: "ssh_key_title",
}

// Weight returns the field's weight from [FieldWeights].
func (f Field) Weight() float64 {
	return FieldWeights[f]
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}

	return fmt.Sprintf("field(%d)", int(f))
}

// MarshalText implements [encoding.TextMarshaler].
func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
