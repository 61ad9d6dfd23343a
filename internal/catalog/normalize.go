package catalog

import (
	"fmt"
	"strings"

	"github.com/claude/treino/internal/models"
)

// Normalize maps a raw external catalog item onto the unified exercise shape.
// Providers disagree on field names, so each field is looked up in order of
// preference. Missing or mistyped fields become empty strings.
func Normalize(raw map[string]any) models.Exercise {
	titulo := firstString(raw, "name", "titulo")
	if titulo == "" {
		titulo = models.UntitledExercise
	}

	musculo := firstElem(raw, "targetMuscles")
	if musculo == "" {
		musculo = firstElem(raw, "bodyParts")
	}
	if musculo == "" {
		musculo = stringField(raw, "musculo")
	}

	descricao := joined(raw, "instructions")
	if descricao == "" {
		descricao = stringField(raw, "descricao")
	}

	ex := models.Exercise{
		ID:        nil,
		Titulo:    titulo,
		Musculo:   musculo,
		Descricao: descricao,
		Thumbnail: firstString(raw, "imageUrl", "gifUrl", "thumbnail"),
		Source:    models.SourceExternal,
	}
	return ex.Clamped()
}

// NormalizeAll normalizes a list of raw external items.
func NormalizeAll(raw []map[string]any) []models.Exercise {
	out := make([]models.Exercise, 0, len(raw))
	for _, r := range raw {
		out = append(out, Normalize(r))
	}
	return out
}

func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case float64, int, int64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(raw, k); s != "" {
			return s
		}
	}
	return ""
}

func firstElem(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func joined(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case []string:
		return strings.Join(v, " ")
	}
	return ""
}
