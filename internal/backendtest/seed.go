package backendtest

import "github.com/claude/treino/internal/models"

// Demo returns options seeding a small mixed catalog. External items use the
// different field shapes real catalog sources send.
func Demo() []Option {
	return []Option{
		WithPersonal(
			models.Exercise{Titulo: "Supino reto", Musculo: "peito", Descricao: "Barra, pegada média.", Thumbnail: "uploads/supino.png"},
			models.Exercise{Titulo: "Remada curvada", Musculo: "costas", Descricao: "Tronco a 45 graus."},
		),
		WithExternal(
			map[string]any{
				"name":          "Barbell Squat",
				"targetMuscles": []any{"quadriceps"},
				"instructions":  []any{"Stand with feet shoulder-width apart.", "Lower until thighs are parallel."},
				"gifUrl":        "https://static.example.com/squat.gif",
			},
			map[string]any{
				"name":      "Goblet Squat",
				"bodyParts": []any{"upper legs"},
				"imageUrl":  "https://static.example.com/goblet.png",
			},
			map[string]any{
				"titulo":    "Prancha",
				"musculo":   "core",
				"descricao": "Segure a posição.",
				"thumbnail": "/static/prancha.png",
			},
			map[string]any{
				"name":          "Pull-up",
				"targetMuscles": []any{"lats"},
			},
			map[string]any{
				"name":         "Walking Lunge",
				"bodyParts":    []any{"upper legs"},
				"instructions": []any{"Step forward.", "Alternate legs."},
			},
		),
	}
}
