package domain

type AttendanceState string

const (
	AttendanceAttended    AttendanceState = "attended"
	AttendanceAbsent      AttendanceState = "absent"
	AttendanceNotRecorded AttendanceState = "not_recorded"
	AttendanceUnknown     AttendanceState = "unknown"
)

// DeriveAttendance maps the feed's optional presence flag and the existence of
// an attendance record onto the four display states. Every feed uses it when
// building occurrences.
func DeriveAttendance(isPresent *bool, hasAttendance bool) AttendanceState {
	switch {
	case isPresent != nil && *isPresent:
		return AttendanceAttended
	case isPresent != nil:
		return AttendanceAbsent
	case hasAttendance:
		return AttendanceNotRecorded
	default:
		return AttendanceUnknown
	}
}
