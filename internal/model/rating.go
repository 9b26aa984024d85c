package model

import "time"

// QuestionCount number of scored questions per rating
const QuestionCount = 10

// Rating one student's scores for one (staff, subject) pair.
// Average is computed once at insert time.
type Rating struct {
	RatingID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                 json:"rating_id"`
	RegisterNo string    `gorm:"type:varchar(32);not null;uniqueIndex:uq_ratings_student_pair"  json:"register_no"`
	Department string    `gorm:"type:varchar(150);not null"                                     json:"department"`
	Semester   string    `gorm:"type:varchar(50);not null"                                      json:"semester"`
	Staff      string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_ratings_student_pair" json:"staff"`
	Subject    string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_ratings_student_pair" json:"subject"`
	Q1         float64   `gorm:"column:q1;not null"  json:"q1"`
	Q2         float64   `gorm:"column:q2;not null"  json:"q2"`
	Q3         float64   `gorm:"column:q3;not null"  json:"q3"`
	Q4         float64   `gorm:"column:q4;not null"  json:"q4"`
	Q5         float64   `gorm:"column:q5;not null"  json:"q5"`
	Q6         float64   `gorm:"column:q6;not null"  json:"q6"`
	Q7         float64   `gorm:"column:q7;not null"  json:"q7"`
	Q8         float64   `gorm:"column:q8;not null"  json:"q8"`
	Q9         float64   `gorm:"column:q9;not null"  json:"q9"`
	Q10        float64   `gorm:"column:q10;not null" json:"q10"`
	Average    float64   `gorm:"not null"            json:"average"`
	CreatedAt  time.Time `gorm:"not null"            json:"created_at"`
}

// TableName table name
func (Rating) TableName() string { return "ratings" }

// Scores the ten answers in question order
func (r *Rating) Scores() [QuestionCount]float64 {
	return [QuestionCount]float64{r.Q1, r.Q2, r.Q3, r.Q4, r.Q5, r.Q6, r.Q7, r.Q8, r.Q9, r.Q10}
}

// SetScores stores the answers and the arithmetic mean
func (r *Rating) SetScores(s [QuestionCount]float64) {
	r.Q1, r.Q2, r.Q3, r.Q4, r.Q5 = s[0], s[1], s[2], s[3], s[4]
	r.Q6, r.Q7, r.Q8, r.Q9, r.Q10 = s[5], s[6], s[7], s[8], s[9]

	var sum float64
	for _, v := range s {
		sum += v
	}
	r.Average = sum / QuestionCount
}
