package calculator

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"undoCalc/internal/domain"
	"undoCalc/internal/ports"
)

// Controller — маршруты калькулятора: вычисление, история, отмена и повтор, сохранение и загрузка.
type Controller struct {
	uc        ports.ICalculatorUseCase
	log       *slog.Logger
	precision int
}

// New создаёт контроллер калькулятора. precision — знаков после запятой в поле display.
func New(uc ports.ICalculatorUseCase, log *slog.Logger, precision int) *Controller {
	return &Controller{uc: uc, log: log, precision: precision}
}

// RegisterRoutes реализует http.Controller: регистрирует маршруты на роутере.
func (c *Controller) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/calculate", c.calculate)
	api.GET("/history", c.history)
	api.DELETE("/history", c.clear)
	api.POST("/undo", c.undo)
	api.POST("/redo", c.redo)
	api.POST("/history/save", c.save)
	api.POST("/history/load", c.load)
}

// statusFor переводит ошибку фасада в HTTP-статус.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidOperation),
		errors.Is(err, domain.ErrOperand),
		errors.Is(err, domain.ErrDivisionByZero),
		errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyStack):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (c *Controller) fail(ctx *gin.Context, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.log.Error(action+" failed", "error", err)
	} else {
		c.log.Warn(action+" rejected", "error", err)
	}
	ctx.JSON(status, ErrorResponse{Message: err.Error()})
}

// @Summary Выполнить вычисление
// @Description Принимает операцию (имя или символ) и два операнда, возвращает результат. Запись попадает в историю, в том числе неудачная.
// @Tags calculator
// @Accept json
// @Produce json
// @Param request body CalculateRequest true "Параметры вычисления"
// @Success 200 {object} CalculateResponse "Результат вычисления"
// @Failure 400 {object} CalculateResponse "Неизвестная операция, кривые операнды или арифметическая ошибка"
// @Failure 500 {object} CalculateResponse "Внутренняя ошибка сервера"
// @Router /api/v1/calculate [post]
func (c *Controller) calculate(ctx *gin.Context) {
	var req CalculateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.log.Warn("calculate bind failed", "error", err)
		ctx.JSON(http.StatusBadRequest, CalculateResponse{Message: "invalid request: " + err.Error()})
		return
	}

	rec, err := c.uc.Evaluate(ctx.Request.Context(), req.Operation, req.A, req.B)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			c.log.Error("calculate failed", "error", err)
		}
		ctx.JSON(status, CalculateResponse{Operation: req.Operation, Message: err.Error()})
		return
	}

	result := rec.Result
	ctx.JSON(http.StatusOK, CalculateResponse{
		Operation: rec.Operation,
		A:         rec.A,
		B:         rec.B,
		Result:    &result,
		Display:   domain.FormatNumber(result, c.precision),
	})
}

// @Summary Получить историю
// @Tags calculator
// @Produce json
// @Success 200 {object} HistoryResponse "Записи в порядке добавления"
// @Router /api/v1/history [get]
func (c *Controller) history(ctx *gin.Context) {
	c.respondHistory(ctx)
}

// @Summary Очистить историю
// @Description Очистка не отменяется через undo.
// @Tags calculator
// @Produce json
// @Success 200 {object} HistoryResponse "Пустая история"
// @Router /api/v1/history [delete]
func (c *Controller) clear(ctx *gin.Context) {
	c.uc.Clear(ctx.Request.Context())
	c.respondHistory(ctx)
}

// @Summary Отменить последнее изменение истории
// @Tags calculator
// @Produce json
// @Success 200 {object} HistoryResponse "История после отмены"
// @Failure 409 {object} ErrorResponse "Нечего отменять"
// @Router /api/v1/undo [post]
func (c *Controller) undo(ctx *gin.Context) {
	if err := c.uc.Undo(ctx.Request.Context()); err != nil {
		c.fail(ctx, "undo", err)
		return
	}
	c.respondHistory(ctx)
}

// @Summary Повторить отменённое изменение
// @Tags calculator
// @Produce json
// @Success 200 {object} HistoryResponse "История после повтора"
// @Failure 409 {object} ErrorResponse "Нечего повторять"
// @Router /api/v1/redo [post]
func (c *Controller) redo(ctx *gin.Context) {
	if err := c.uc.Redo(ctx.Request.Context()); err != nil {
		c.fail(ctx, "redo", err)
		return
	}
	c.respondHistory(ctx)
}

// @Summary Сохранить историю в настроенный файл
// @Tags calculator
// @Produce json
// @Success 200 {object} map[string]string "Сохранено"
// @Failure 500 {object} ErrorResponse "Ошибка записи"
// @Router /api/v1/history/save [post]
func (c *Controller) save(ctx *gin.Context) {
	if err := c.uc.Save(ctx.Request.Context(), ""); err != nil {
		c.fail(ctx, "save", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// @Summary Загрузить историю из настроенного файла
// @Tags calculator
// @Produce json
// @Success 200 {object} HistoryResponse "Загруженная история"
// @Failure 404 {object} ErrorResponse "Файла истории нет"
// @Router /api/v1/history/load [post]
func (c *Controller) load(ctx *gin.Context) {
	if err := c.uc.Load(ctx.Request.Context(), ""); err != nil {
		c.fail(ctx, "load", err)
		return
	}
	c.respondHistory(ctx)
}

func (c *Controller) respondHistory(ctx *gin.Context) {
	list := c.uc.History(ctx.Request.Context())
	items := make([]HistoryItem, len(list))
	for i, r := range list {
		items[i] = toHistoryItem(r, c.precision)
	}
	ctx.JSON(http.StatusOK, HistoryResponse{Items: items})
}
