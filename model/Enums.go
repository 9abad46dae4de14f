package model

// KeyStatus summarises how much life an access key has left.
type KeyStatus string

const (
	KeyStatusActive    KeyStatus = "active"
	KeyStatusLow       KeyStatus = "low" // exactly one use left
	KeyStatusDepleted  KeyStatus = "depleted"
	KeyStatusUnlimited KeyStatus = "unlimited"
)

func (s KeyStatus) IsValid() bool {
	switch s {
	case KeyStatusActive, KeyStatusLow, KeyStatusDepleted, KeyStatusUnlimited:
		return true
	}
	return false
}
