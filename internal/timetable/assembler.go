package timetable

import (
	"sort"
	"strings"
	"time"

	"lms-timetable/internal/domain"
)

const (
	adHocKeyPrefix  = "Slot-"
	unknownSlotKey  = adHocKeyPrefix + "unknown"
	occurrenceIDSep = "-"
)

// Assembler merges a slot catalog with one week of occurrences into grid rows.
// It performs no I/O; the clock is only consulted for occurrences whose date
// cannot be recovered from the feed.
type Assembler struct {
	clock func() time.Time
}

func NewAssembler(clock func() time.Time) *Assembler {
	if clock == nil {
		clock = time.Now
	}
	return &Assembler{clock: clock}
}

// Assemble is Assembler.Assemble with the wall clock.
func Assemble(catalog []domain.TimeSlotDefinition, week domain.WeeklyOccurrences) []domain.TimetableRow {
	return NewAssembler(time.Now).Assemble(catalog, week)
}

// Assemble builds the grid from scratch. Catalog rows keep catalog order and
// come first; rows for slots the catalog does not know are appended in the
// order they are first referenced. Buckets are merged Monday to Sunday, then
// buckets whose key is not a weekday, where only occurrences naming their own
// day can be placed. Unplaceable reports what is left out.
func (a *Assembler) Assemble(catalog []domain.TimeSlotDefinition, week domain.WeeklyOccurrences) []domain.TimetableRow {
	g := newGrid(len(catalog))
	for _, slot := range catalog {
		g.addCatalogRow(slot)
	}

	today := a.clock().Format(DateLayout)
	buckets := bucketsByDay(week)
	for _, day := range domain.Weekdays {
		for _, bucket := range buckets[day] {
			g.place(bucket, day, today)
		}
	}
	for _, key := range strayKeys(week) {
		g.place(week[key], "", today)
	}

	return g.result()
}

// Unplaceable lists the occurrences Assemble leaves out because no canonical
// weekday can be resolved for them, in a deterministic order.
func Unplaceable(week domain.WeeklyOccurrences) []domain.ClassOccurrence {
	var dropped []domain.ClassOccurrence
	for _, key := range sortedKeys(week) {
		bucketDay, _ := domain.CanonicalDay(key)
		for _, occurrence := range week[key].Occurrences {
			if _, ok := columnFor(occurrence, bucketDay); ok {
				continue
			}
			if strings.TrimSpace(occurrence.DayOfWeek) == "" {
				occurrence.DayOfWeek = key
			}
			dropped = append(dropped, occurrence)
		}
	}
	return dropped
}

type row struct {
	domain.TimetableRow
	startTime string
	endTime   string
}

type grid struct {
	ordered  []*row
	byKey    map[string]*row
	bySlotID map[string]*row
}

func newGrid(capacity int) *grid {
	return &grid{
		ordered:  make([]*row, 0, capacity),
		byKey:    make(map[string]*row, capacity),
		bySlotID: make(map[string]*row, capacity),
	}
}

// place merges one bucket. bucketDay is empty when the bucket key is not a
// weekday.
func (g *grid) place(bucket domain.DayBucket, bucketDay, today string) {
	bucketDate, _ := NormalizeDate(bucket.Date)
	for _, occurrence := range bucket.Occurrences {
		column, ok := columnFor(occurrence, bucketDay)
		if !ok {
			continue
		}
		placed := normalizeOccurrence(occurrence, column, columnDate(bucketDate, bucketDay, column), today)
		r := g.rowFor(placed)
		if placed.StartTime == "" {
			placed.StartTime = r.startTime
		}
		if placed.EndTime == "" {
			placed.EndTime = r.endTime
		}
		r.Cells[column] = append(r.Cells[column], placed)
	}
}

func (g *grid) addCatalogRow(slot domain.TimeSlotDefinition) {
	key := strings.TrimSpace(slot.Label)
	if key == "" {
		key = adHocKeyPrefix + strings.TrimSpace(slot.ID)
	}
	if _, exists := g.byKey[key]; exists {
		return
	}
	r := g.add(key, slot.StartTime, slot.EndTime, false)
	r.SlotID = slot.ID
	if id := strings.TrimSpace(slot.ID); id != "" {
		if _, exists := g.bySlotID[id]; !exists {
			g.bySlotID[id] = r
		}
	}
}

// rowFor finds the row an occurrence belongs to, creating an ad-hoc row when
// neither its slot label nor its slot id matches an existing one.
func (g *grid) rowFor(occurrence domain.ClassOccurrence) *row {
	label := strings.TrimSpace(occurrence.TimeSlotLabel)
	if label != "" {
		if r, ok := g.byKey[label]; ok {
			return r
		}
	}
	slotID := strings.TrimSpace(occurrence.TimeSlotID)
	if slotID != "" {
		if r, ok := g.bySlotID[slotID]; ok {
			return r
		}
	}

	key := rowKey(label, slotID)
	if r, ok := g.byKey[key]; ok {
		return r
	}
	r := g.add(key, occurrence.StartTime, occurrence.EndTime, true)
	r.SlotID = slotID
	return r
}

func (g *grid) add(key, start, end string, adHoc bool) *row {
	r := &row{
		TimetableRow: domain.TimetableRow{
			Key:       key,
			Label:     key,
			TimeRange: FormatTimeRange(start, end),
			Index:     len(g.ordered),
			AdHoc:     adHoc,
			Cells:     emptyCells(),
		},
		startTime: optionalClock(start),
		endTime:   optionalClock(end),
	}
	g.ordered = append(g.ordered, r)
	g.byKey[key] = r
	return r
}

func (g *grid) result() []domain.TimetableRow {
	sort.SliceStable(g.ordered, func(i, j int) bool {
		return g.ordered[i].Index < g.ordered[j].Index
	})
	rows := make([]domain.TimetableRow, 0, len(g.ordered))
	for _, r := range g.ordered {
		rows = append(rows, r.TimetableRow)
	}
	return rows
}

func emptyCells() map[string][]domain.ClassOccurrence {
	cells := make(map[string][]domain.ClassOccurrence, len(domain.Weekdays))
	for _, day := range domain.Weekdays {
		cells[day] = []domain.ClassOccurrence{}
	}
	return cells
}

func rowKey(label, slotID string) string {
	switch {
	case label != "":
		return label
	case slotID != "":
		return adHocKeyPrefix + slotID
	default:
		return unknownSlotKey
	}
}

// columnFor resolves the day column of an occurrence. Its own day name wins
// over the bucket it was delivered in.
func columnFor(occurrence domain.ClassOccurrence, bucketDay string) (string, bool) {
	if strings.TrimSpace(occurrence.DayOfWeek) == "" {
		return bucketDay, bucketDay != ""
	}
	return domain.CanonicalDay(occurrence.DayOfWeek)
}

// columnDate returns the date of column within the bucket's week, derived
// from the bucket's own date. It is empty when the bucket has no date or no
// weekday to measure from.
func columnDate(bucketDate, bucketDay, column string) string {
	if bucketDate == "" || bucketDay == "" {
		return ""
	}
	if column == bucketDay {
		return bucketDate
	}
	from, okFrom := domain.DayOffset(bucketDay)
	to, okTo := domain.DayOffset(column)
	date, err := time.Parse(DateLayout, bucketDate)
	if !okFrom || !okTo || err != nil {
		return ""
	}
	return date.AddDate(0, 0, to-from).Format(DateLayout)
}

func normalizeOccurrence(occurrence domain.ClassOccurrence, column, fallbackDate, today string) domain.ClassOccurrence {
	placed := occurrence
	placed.DayOfWeek = column

	if date, ok := NormalizeDate(occurrence.Date); ok {
		placed.Date = date
		placed.DateDefaulted = false
	} else if fallbackDate != "" {
		placed.Date = fallbackDate
		placed.DateDefaulted = true
	} else {
		placed.Date = today
		placed.DateDefaulted = true
	}

	placed.OccurrenceID = occurrenceID(occurrence, column)
	placed.StartTime = optionalClock(occurrence.StartTime)
	placed.EndTime = optionalClock(occurrence.EndTime)
	if placed.Attendance == "" {
		placed.Attendance = domain.AttendanceUnknown
	}
	return placed
}

func occurrenceID(occurrence domain.ClassOccurrence, column string) string {
	if id := strings.TrimSpace(occurrence.OccurrenceID); id != "" {
		return id
	}
	if id := strings.TrimSpace(occurrence.ClassID); id != "" {
		return id
	}
	return occurrence.CourseCode + occurrenceIDSep + column
}

// bucketsByDay groups the feed's buckets under canonical day names. Buckets
// whose key is not a weekday are not returned.
func bucketsByDay(week domain.WeeklyOccurrences) map[string][]domain.DayBucket {
	grouped := make(map[string][]domain.DayBucket, len(domain.Weekdays))
	for _, key := range sortedKeys(week) {
		day, ok := domain.CanonicalDay(key)
		if !ok {
			continue
		}
		grouped[day] = append(grouped[day], week[key])
	}
	return grouped
}

// strayKeys returns the sorted bucket keys that are not weekday names.
func strayKeys(week domain.WeeklyOccurrences) []string {
	var keys []string
	for _, key := range sortedKeys(week) {
		if _, ok := domain.CanonicalDay(key); !ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func sortedKeys(week domain.WeeklyOccurrences) []string {
	keys := make([]string, 0, len(week))
	for key := range week {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
