package session

import "errors"

// ValidationError is a form or workout problem reported before any request
// is made. Message is shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrTitleRequired        = &ValidationError{Message: "Por favor, insira um título e adicione exercícios."}
	ErrNoExercises          = &ValidationError{Message: "Por favor, insira um título e adicione exercícios."}
	ErrNoPersistedExercises = &ValidationError{Message: "Os exercícios adicionados ainda não foram convertidos para o catálogo pessoal."}
	ErrMissingFields        = &ValidationError{Message: "Preencha todos os campos."}
	ErrNotOnPage            = &ValidationError{Message: "Este item não está na página atual."}
)

var (
	ErrUnknownCard       = errors.New("unknown card")
	ErrNotDragging       = errors.New("no card is being dragged")
	ErrPromotionInFlight = errors.New("card is already being promoted")
	ErrNotEditing        = errors.New("no exercise form is open")
	ErrUnknownWorkout    = errors.New("unknown workout")
	ErrCancelled         = errors.New("cancelled")
)

// User-facing failure messages.
const (
	MsgPromotionFailed = "Não foi possível adicionar este exercício (erro ao clonar)."
	MsgSaveFailed      = "Erro ao salvar treino."
	MsgSaved           = "Treino salvo com sucesso!"
	MsgDeleteFailed    = "Erro ao excluir treino."
	MsgExerciseSave    = "Erro ao salvar exercício."
	MsgExerciseDelete  = "Erro ao deletar exercício."
	MsgConfirmExercise = "Deseja remover este exercício?"
)

// alertedError marks a failure the user was already told about.
type alertedError struct {
	msg string
	err error
}

func (e *alertedError) Error() string {
	if e.err == nil || e.err.Error() == e.msg {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *alertedError) Unwrap() error { return e.err }

// Alerted reports whether err was already shown through the Notifier, so a
// driver need not print it again.
func Alerted(err error) bool {
	var ae *alertedError
	return errors.As(err, &ae)
}

// fail alerts msg and returns err marked as alerted. Must be called without
// the session lock.
func (s *Session) fail(msg string, err error) error {
	s.notify.Alert(msg)
	return &alertedError{msg: msg, err: err}
}

// invalid alerts a validation error.
func (s *Session) invalid(err *ValidationError) error {
	return s.fail(err.Message, err)
}
