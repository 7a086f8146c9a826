package partner

// CreateClientInput carries the fields for creating a client
type CreateClientInput struct {
	Name       string `json:"name" binding:"required"`
	Identifier string `json:"identifier"`
	TaxID      string `json:"tax_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

// UpdateClientInput carries the updatable fields of a client; nil fields are
// left untouched
type UpdateClientInput struct {
	Name       *string `json:"name"`
	Identifier *string `json:"identifier"`
	TaxID      *string `json:"tax_id"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
}
