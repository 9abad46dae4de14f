package dto

// AddKeyRequest is used by keyctl and the seeder to register a key.
type AddKeyRequest struct {
	Name    string `json:"name" validate:"omitempty,min=3,max=255"`
	Secret  string `json:"secret" validate:"omitempty,totpsecret"`
	MaxUses int    `json:"max_uses" validate:"min=-1,ne=0"`
}

type ModifyUsageRequest struct {
	Name    string `json:"name" validate:"required"`
	MaxUses int    `json:"max_uses" validate:"min=-1,ne=0"`
}
