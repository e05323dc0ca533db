package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/scheduler-api/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

type patientRepository struct {
	BaseRepository
}

type scheduleRepository struct {
	BaseRepository
}

type appointmentRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{BaseRepository: NewBaseRepository(db)}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{BaseRepository: NewBaseRepository(db)}
}

func NewScheduleRepository(db *sqlx.DB) repository.ScheduleRepository {
	return &scheduleRepository{BaseRepository: NewBaseRepository(db)}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}
