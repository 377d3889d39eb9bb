package repository

import "github.com/mindlog/mindlog/internal/model"

func newMood() *model.MoodEntry         { return &model.MoodEntry{Score: 5} }
func newActivity() *model.ActivityEntry { return &model.ActivityEntry{Activity: "walk", Duration: 30} }
func newJournal() *model.JournalEntry   { return &model.JournalEntry{Entry: "today", Tags: []string{"a"}} }
func newConditionLink() *model.ConditionLink {
	return &model.ConditionLink{EntityID: "1"}
}
