package book

// BookReq is the create/update payload. The lending fields are bound only so
// the update handler can reject attempts to write them: availability and
// borrower move exclusively through borrow and return.
type BookReq struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author"`
	ISBN   string `json:"isbn" validate:"required"`

	Available  *bool  `json:"available"`
	BorrowerID *int64 `json:"borrower_id"`
}

// TouchesLending reports whether the payload tries to set a lending field.
func (r BookReq) TouchesLending() bool {
	return r.Available != nil || r.BorrowerID != nil
}
