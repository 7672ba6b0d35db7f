package repositories

import (
	"github.com/yigit/campushub/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository            *UserRepository
	RoleRepository            *RoleRepository
	TokenRepository           *TokenRepository
	EventRepository           *EventRepository
	CoordinatorRepository     *CoordinatorRepository
	RegistrationRepository    *RegistrationRepository
	ResultRepository          *ResultRepository
	CompanyRepository         *CompanyRepository
	JobRepository             *JobRepository
	ApplicationRepository     *ApplicationRepository
	PlacementResultRepository *PlacementResultRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pg *db.PostgresDB) *Repositories {
	conn := pg.Pool
	return &Repositories{
		UserRepository:            NewUserRepository(conn, pg),
		RoleRepository:            NewRoleRepository(conn),
		TokenRepository:           NewTokenRepository(conn),
		EventRepository:           NewEventRepository(conn),
		CoordinatorRepository:     NewCoordinatorRepository(conn, pg),
		RegistrationRepository:    NewRegistrationRepository(conn, pg),
		ResultRepository:          NewResultRepository(conn),
		CompanyRepository:         NewCompanyRepository(conn),
		JobRepository:             NewJobRepository(conn),
		ApplicationRepository:     NewApplicationRepository(conn),
		PlacementResultRepository: NewPlacementResultRepository(conn),
	}
}
