package domain

// TimeSlotDefinition is one canonical teaching period of the institution,
// independent of any date. StartTime and EndTime are wall-clock strings in
// "HH:mm" or "HH:mm:ss" form as delivered by the catalog source.
type TimeSlotDefinition struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"name" yaml:"name"`
	StartTime string `json:"startTime" yaml:"start_time"`
	EndTime   string `json:"endTime" yaml:"end_time"`
}
