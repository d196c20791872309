package models

import "time"

// Group is the read-side projection of a training group maintained by the
// group/course collaborator. The engine only ever reads it to map a group to
// its course and to distinguish a missing group from missing criteria.
type Group struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
