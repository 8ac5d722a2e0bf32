package model

// Record carries the backend-assigned key shared by every stored entity.
// The key is generated by the backend on creation and never changes.
type Record struct {
	ID string `json:"id"`
}

func (r *Record) GetID() string { return r.ID }

func (r *Record) SetID(id string) { r.ID = id }

// Collection names in the remote store
const (
	CollectionUsers    = "users"
	CollectionProducts = "products"
)
