// Package models defines the domain types for keepnote.
package models

import "time"

// User is a registered identity. UserID is immutable after registration and
// serves as the primary key. Password holds the presented secret on input
// and the bcrypt hash at rest; it is never serialized back to clients.
type User struct {
	UserID    string    `json:"userId" bson:"_id"`
	Password  string    `json:"password,omitempty" bson:"password"`
	Role      string    `json:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Note is a single entry inside a user's notebook. NoteID is unique within
// the owning notebook only, assigned by the note service from the notebook's
// counter. A note has no existence outside its notebook.
type Note struct {
	NoteID      int       `json:"noteId" bson:"noteId"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category" bson:"category"`
	Priority    string    `json:"priority" bson:"priority"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// Notebook is the per-user note aggregate: the single stored document
// holding every note a user owns plus the id counter for the next note.
// The notebook, not the note, is the unit of storage; all note mutations
// rewrite the whole document under the store's version check.
type Notebook struct {
	UserID     string `json:"userId" bson:"_id"`
	NextNoteID int    `json:"nextNoteId" bson:"nextNoteId"`
	Notes      []Note `json:"notes" bson:"notes"`
}

// FindNote returns the index of the note with the given id, or -1.
func (nb *Notebook) FindNote(noteID int) int {
	for i := range nb.Notes {
		if nb.Notes[i].NoteID == noteID {
			return i
		}
	}
	return -1
}

// Category is an independent keyed record for grouping notes.
type Category struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	CreatedBy   string    `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// Reminder is an independent keyed record for scheduled prompts.
type Reminder struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Type        string    `json:"type" bson:"type"`
	CreatedBy   string    `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
