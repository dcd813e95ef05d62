package api

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"justdo/internal/feedback"
	"justdo/internal/llm"
	"justdo/internal/profile"
	"justdo/internal/task"
)

// aiTimeout bounds every best-effort enrichment call so a slow provider
// cannot stall a task mutation response.
const aiTimeout = 15 * time.Second

type addRequest struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
	Enhance  bool   `json:"enhance"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "ok",
		"ai_enabled": s.aiEnabled,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleList(c *fiber.Ctx) error {
	items, err := s.store.List(c.Context())
	if err != nil {
		return serverError(c, err)
	}
	if items == nil {
		items = []*task.Item{}
	}
	return c.JSON(fiber.Map{"todos": items})
}

func (s *Server) handleAdd(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return badRequest(c, "text is required")
	}
	if req.Priority == "" {
		req.Priority = task.PriorityMedium
	}
	if !task.ValidPriority(req.Priority) {
		return badRequest(c, "priority must be high, medium, or low")
	}

	text := req.Text
	if req.Enhance && s.aiEnabled {
		ctx, cancel := context.WithTimeout(c.Context(), aiTimeout)
		enhanced, err := s.orchestrator.Enhance(ctx, text)
		cancel()
		if err == nil {
			text = enhanced
		}
	}

	item, err := s.store.Add(c.Context(), text, req.Priority)
	if err != nil {
		return serverError(c, err)
	}

	s.recordProfile(item.Text, profile.ActionAdd)

	resp := fiber.Map{"todo": item}
	if msg := s.eventFeedback(c.Context(), feedback.EventTaskAdded, s.addedValues(c.Context(), item)); msg != "" {
		resp["ai_feedback"] = msg
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (s *Server) handleDone(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid task id")
	}

	item, err := s.store.MarkDone(c.Context(), id)
	if errors.Is(err, task.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return serverError(c, err)
	}

	s.recordProfile(item.Text, profile.ActionComplete)

	resp := fiber.Map{"todo": item}
	if msg := s.eventFeedback(c.Context(), feedback.EventTaskCompleted, s.completedValues(c.Context(), item)); msg != "" {
		resp["ai_feedback"] = msg
	}
	return c.JSON(resp)
}

func (s *Server) handleToggle(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid task id")
	}

	item, err := s.store.Toggle(c.Context(), id)
	if errors.Is(err, task.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return serverError(c, err)
	}

	if item.Done {
		s.recordProfile(item.Text, profile.ActionComplete)
	}
	return c.JSON(fiber.Map{"todo": item})
}

func (s *Server) handleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid task id")
	}

	item, err := s.store.Delete(c.Context(), id)
	if errors.Is(err, task.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return serverError(c, err)
	}

	s.recordProfile(item.Text, profile.ActionDelete)
	return c.JSON(fiber.Map{"deleted": item})
}

func (s *Server) handleClear(c *fiber.Ctx) error {
	n, err := s.store.Clear(c.Context())
	if err != nil {
		return serverError(c, err)
	}

	resp := fiber.Map{"cleared": n}
	if n > 0 {
		values := map[string]string{"cleared_count": strconv.FormatInt(n, 10)}
		if msg := s.eventFeedback(c.Context(), feedback.EventListCleared, values); msg != "" {
			resp["ai_feedback"] = msg
		}
	}
	return c.JSON(resp)
}

// handleSuggest drains the suggestion stream server-side; the HTTP facade
// returns a complete message rather than an event stream.
func (s *Server) handleSuggest(c *fiber.Ctx) error {
	items, err := s.store.List(c.Context())
	if err != nil {
		return serverError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Context(), aiTimeout)
	defer cancel()

	got, err := s.orchestrator.Suggest(ctx, taskFacts(items))
	if errors.Is(err, llm.ErrNotConfigured) {
		return aiUnavailable(c)
	}
	if err != nil {
		return serverError(c, err)
	}

	if got.Stream == nil {
		return c.JSON(fiber.Map{"suggestion": got.Message})
	}
	defer got.Stream.Close()

	var b strings.Builder
	for got.Stream.Next() {
		b.WriteString(got.Stream.Text())
	}
	if err := got.Stream.Err(); err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"suggestion": b.String()})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return badRequest(c, "message is required")
	}

	items, err := s.store.List(c.Context())
	if err != nil {
		return serverError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Context(), aiTimeout)
	defer cancel()

	reply, err := s.orchestrator.Chat(ctx, req.Message, taskFacts(items))
	if errors.Is(err, llm.ErrNotConfigured) {
		return aiUnavailable(c)
	}
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"reply": reply})
}

// eventFeedback runs one best-effort feedback generation. Any failure is
// logged and reduced to "", so enrichment never fails the request.
func (s *Server) eventFeedback(ctx context.Context, event string, values map[string]string) string {
	if !s.aiEnabled {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	msg, err := s.orchestrator.Feedback(ctx, event, values)
	if err != nil {
		s.log.WithError(err).WithField("event", event).Warn("feedback generation")
		return ""
	}
	return msg
}

func (s *Server) addedValues(ctx context.Context, item *task.Item) map[string]string {
	total, completed, err := s.store.Counts(ctx)
	if err != nil {
		total, completed = 0, 0
	}
	return map[string]string{
		"task_text":        item.Text,
		"task_priority":    item.Priority,
		"incomplete_count": strconv.Itoa(total - completed),
		"total_count":      strconv.Itoa(total),
	}
}

func (s *Server) completedValues(ctx context.Context, item *task.Item) map[string]string {
	total, completed, err := s.store.Counts(ctx)
	if err != nil {
		total, completed = 0, 0
	}
	return map[string]string{
		"task_text":       item.Text,
		"task_priority":   item.Priority,
		"today_completed": strconv.Itoa(completed),
		"today_total":     strconv.Itoa(total),
		"remaining_count": strconv.Itoa(total - completed),
	}
}

func taskFacts(items []*task.Item) []feedback.TaskFact {
	facts := make([]feedback.TaskFact, len(items))
	for i, item := range items {
		facts[i] = feedback.TaskFact{
			ID:       item.ID,
			Text:     item.Text,
			Priority: item.Priority,
			Done:     item.Done,
		}
	}
	return facts
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found"})
}

func serverError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func aiUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "AI is not configured; set OPENAI_API_KEY",
	})
}
