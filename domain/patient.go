package domain

type Patient struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Age     *int64 `db:"age" json:"age,omitempty"`
	Gender  string `db:"gender" json:"gender"`
	Phone   string `db:"phone" json:"phone"`
	Address string `db:"address" json:"address"`
	Active  bool   `db:"active" json:"active"`
}

type PatientInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Age     *int64 `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Gender  string `json:"gender" validate:"max=20"`
	Phone   string `json:"phone" validate:"max=40"`
	Address string `json:"address" validate:"max=300"`
}
