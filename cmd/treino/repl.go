package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/claude/treino/internal/session"
	"github.com/claude/treino/internal/view"
)

const help = `Comandos:
  search [termo]          busca no catálogo (vazio lista tudo)
  page N | next | prev    navega pelas páginas
  add CARD                adiciona ao treino (ex.: add 3)
  drag CARD | drop catalog|workout | cancel
  remove CARD             devolve ao catálogo (ex.: remove w1)
  sets CARD SÉRIES REPS   define séries e repetições
  title TEXTO             define o título do treino
  save                    salva o treino
  workouts                lista os treinos salvos
  load ID                 carrega um treino salvo
  delete-workout ID       exclui um treino salvo
  new-exercise IMAGEM     cadastra um exercício pessoal
  edit ID [IMAGEM]        edita um exercício pessoal da página
  delete-exercise ID      exclui um exercício pessoal
  show                    mostra catálogo e treino
  quit`

// repl reads commands line by line and applies them to the session. Catalog
// cards are addressed by their position on screen ("3") and workout cards
// with a w prefix ("w2").
type repl struct {
	sess *session.Session
	in   *bufio.Scanner
	out  io.Writer
	log  *slog.Logger
}

func (r *repl) run(ctx context.Context) {
	fmt.Fprintln(r.out, `Digite "help" para ver os comandos.`)
	for ctx.Err() == nil {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			return
		}
		if r.exec(ctx, r.in.Text()) {
			return
		}
	}
}

// exec runs one command line and reports whether the user asked to quit.
func (r *repl) exec(ctx context.Context, line string) bool {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	var err error
	switch cmd {
	case "":
	case "help", "?":
		fmt.Fprintln(r.out, help)
	case "quit", "exit":
		return true
	case "search":
		r.sess.SearchNow(ctx, rest)
	case "page":
		var n int
		if n, err = r.intArg(args, 0); err == nil {
			r.sess.GoToPage(ctx, n)
		}
	case "next":
		r.sess.NextPage(ctx)
	case "prev":
		r.sess.PrevPage(ctx)
	case "add":
		err = r.withCard(args, func(id session.CardID) error { return r.sess.MoveToWorkout(ctx, id) })
	case "drag":
		err = r.withCard(args, r.sess.DragStart)
	case "drop":
		if len(args) != 1 {
			err = errors.New("uso: drop catalog|workout")
			break
		}
		err = r.sess.Drop(ctx, session.Zone(args[0]))
	case "cancel":
		r.sess.CancelDrag()
	case "remove":
		err = r.withCard(args, r.sess.RemoveFromWorkout)
	case "sets":
		if len(args) != 3 {
			err = errors.New("uso: sets CARD SÉRIES REPS")
			break
		}
		err = r.withCard(args[:1], func(id session.CardID) error { return r.sess.SetReps(id, args[1], args[2]) })
	case "title":
		r.sess.SetTitle(rest)
	case "save":
		_, err = r.sess.SaveWorkout(ctx)
	case "workouts":
		err = r.sess.RefreshWorkouts(ctx)
	case "load":
		var id int
		if id, err = r.intArg(args, 0); err == nil {
			err = r.sess.LoadWorkout(ctx, int64(id))
		}
	case "delete-workout":
		var id int
		if id, err = r.intArg(args, 0); err == nil {
			err = r.sess.DeleteWorkout(ctx, int64(id))
		}
	case "new-exercise":
		err = r.newExercise(ctx, args)
	case "edit":
		err = r.editExercise(ctx, args)
	case "delete-exercise":
		var id int
		if id, err = r.intArg(args, 0); err == nil {
			err = r.sess.DeleteExercise(ctx, int64(id))
		}
	case "show":
		r.show()
	default:
		err = fmt.Errorf("comando desconhecido %q (digite help)", cmd)
	}

	switch {
	case err == nil, errors.Is(err, session.ErrCancelled), session.Alerted(err):
	default:
		fmt.Fprintln(r.out, "erro:", err)
	}
	return false
}

func (r *repl) show() {
	cat, wk := r.sess.State()
	tr := view.NewTextRenderer(r.out)
	tr.RenderCatalog(cat)
	tr.RenderWorkout(wk)
}

func (r *repl) intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errors.New("faltou um número")
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("número inválido %q", args[i])
	}
	return n, nil
}

func (r *repl) withCard(args []string, fn func(session.CardID) error) error {
	if len(args) == 0 {
		return errors.New("faltou o cartão (ex.: 3 ou w1)")
	}
	id, err := r.resolve(args[0])
	if err != nil {
		return err
	}
	return fn(id)
}

// resolve maps a screen handle to a card id.
func (r *repl) resolve(handle string) (session.CardID, error) {
	cat, wk := r.sess.State()
	cards := cat.Cards
	num := handle
	if rest, ok := strings.CutPrefix(strings.ToLower(handle), "w"); ok {
		cards, num = wk.Cards, rest
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > len(cards) {
		return "", fmt.Errorf("cartão %q: %w", handle, session.ErrUnknownCard)
	}
	return session.CardID(cards[n-1].ID), nil
}

func (r *repl) newExercise(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("uso: new-exercise IMAGEM")
	}
	r.sess.OpenNew()
	defer r.sess.CloseEditor()

	form, err := r.fillForm(session.ExerciseForm{})
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("abrindo imagem: %w", err)
	}
	defer f.Close()
	form.ImageName, form.Image = filepath.Base(args[0]), f
	return r.sess.SubmitExercise(ctx, form)
}

func (r *repl) editExercise(ctx context.Context, args []string) error {
	id, err := r.intArg(args, 0)
	if err != nil {
		return err
	}
	form, err := r.sess.OpenEdit(int64(id))
	if err != nil {
		return err
	}
	defer r.sess.CloseEditor()

	fmt.Fprintln(r.out, "Imagem atual:", form.Thumbnail)
	if form, err = r.fillForm(form); err != nil {
		return err
	}
	if len(args) > 1 {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("abrindo imagem: %w", err)
		}
		defer f.Close()
		form.ImageName, form.Image = filepath.Base(args[1]), f
	}
	return r.sess.SubmitExercise(ctx, form)
}

// fillForm prompts for each field; an empty answer keeps the current value.
func (r *repl) fillForm(form session.ExerciseForm) (session.ExerciseForm, error) {
	fields := []struct {
		label string
		dst   *string
	}{
		{"Título", &form.Titulo},
		{"Músculo", &form.Musculo},
		{"Descrição", &form.Descricao},
	}
	for _, f := range fields {
		if *f.dst != "" {
			fmt.Fprintf(r.out, "%s [%s]: ", f.label, *f.dst)
		} else {
			fmt.Fprintf(r.out, "%s: ", f.label)
		}
		if !r.in.Scan() {
			return form, session.ErrCancelled
		}
		if v := strings.TrimSpace(r.in.Text()); v != "" {
			*f.dst = v
		}
	}
	return form, nil
}
