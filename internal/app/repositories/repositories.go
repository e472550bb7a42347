package repositories

import (
	"github.com/studenthub/backend/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	StudentRepository      *StudentRepository
	ActivityRepository     *ActivityRepository
	NotificationRepository *NotificationRepository
	ReportRepository       *ReportRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(database),
		StudentRepository:      NewStudentRepository(database.Pool),
		ActivityRepository:     NewActivityRepository(database),
		NotificationRepository: NewNotificationRepository(database.Pool),
		ReportRepository:       NewReportRepository(database.Pool),
	}
}
