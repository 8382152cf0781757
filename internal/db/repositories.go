package db

// Repositories provides access to all database repositories
type Repositories struct {
	Programs   *ProgramRepository
	Days       *DayRepository
	Broadcasts *BroadcastRepository
	LogFiles   *LogFileRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Programs:   NewProgramRepository(db),
		Days:       NewDayRepository(db),
		Broadcasts: NewBroadcastRepository(db),
		LogFiles:   NewLogFileRepository(db),
	}
}
