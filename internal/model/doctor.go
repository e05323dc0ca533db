package model

type Doctor struct {
	Base
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Specialty string `db:"specialty" json:"specialty"`
	Status    string `db:"status" json:"status"`
}

type CreateDoctorRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Specialty string `json:"specialty" binding:"required"`
}

type UpdateDoctorRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Specialty *string `json:"specialty"`
	Status    *string `json:"status"`
}
