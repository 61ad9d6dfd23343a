package models

// WorkoutExercise is one line of a workout: which personal exercise and how much.
type WorkoutExercise struct {
	ExercicioID int64 `json:"exercicio_id"`
	Sets        int   `json:"sets"`
	Reps        int   `json:"reps"`
}

// WorkoutDraft is the body POSTed to /treino.
type WorkoutDraft struct {
	Titulo     string            `json:"titulo"`
	Exercicios []WorkoutExercise `json:"exercicios"`
}

// Workout is a saved workout as listed by GET /treinos.
type Workout struct {
	ID              int64             `json:"id"`
	Titulo          string            `json:"titulo"`
	TotalExercicios int               `json:"total_exercicios"`
	Exercicios      []WorkoutExercise `json:"exercicios"`
}
