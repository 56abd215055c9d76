package models

// WeeklySlot is a recurring commitment in a TA's week: a lecture they attend
// or a course they are enrolled in. TimeSlot uses the "HH:MM-HH:MM" format.
type WeeklySlot struct {
	ID       string  `db:"id" json:"id"`
	TAEmail  string  `db:"ta_email" json:"ta_email"`
	Day      string  `db:"day" json:"day"`
	TimeSlot string  `db:"time_slot" json:"time_slot"`
	Course   *string `db:"course" json:"course,omitempty"`
}
