package alert

// Result summarizes one alert pass over the tracking store.
type Result struct {
	CheckedCount  int
	FiredCount    int
	ReminderCount int
	EvictedCount  int
	SkippedCount  int
	FailedCount   int
	GateOpen      bool
	SnapshotSaved bool
}
