package slots

// ScheduleRequest defines the recurring capacity pattern for a restaurant.
type ScheduleRequest struct {
	TotalSeats      int    `json:"total_seats" binding:"required,min=0"`
	StartTime       string `json:"start_time" binding:"required,hhmm"`
	EndTime         string `json:"end_time" binding:"required,hhmm"`
	IntervalMinutes int    `json:"interval_minutes" binding:"required,min=5,max=480"`
}

// GenerateSlotsRequest asks for slot materialization on a concrete date.
type GenerateSlotsRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}
