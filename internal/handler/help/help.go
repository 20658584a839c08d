// File: internal/handler/help/help.go
package help

import (
	"net/http"

	"smart-home-portal/internal/database"
	"smart-home-portal/internal/dto"
	"smart-home-portal/internal/middleware"
	"smart-home-portal/internal/model"
	"smart-home-portal/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	createQuestion = store.CreateQuestion
	listQuestions  = store.ListQuestions
)

// CreateQuestionHandler 使用者從說明頁送出問題
// @Summary     Ask for help
// @Description theme 存為問題標題，question 存為說明
// @Tags        help
// @Accept      json
// @Produce     json
// @Param       body body     dto.HelpRequest true "問題內容"
// @Success     201  {object} model.Question
// @Failure     400  {object} dto.HTTPError
// @Failure     401  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Router      /help [post]
func CreateQuestionHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.HelpRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		q := &model.Question{UserID: middleware.IdentityFrom(c).UserID, Question: req.Theme}
		if req.Question != "" {
			q.Description = &req.Question
		}
		created, err := createQuestion(c.Request().Context(), db, q)
		if err != nil {
			c.Logger().Errorf("create question: %v", err)
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "failed to save question"})
		}
		return c.JSON(http.StatusCreated, created)
	}
}

// ListQuestionsHandler 管理員查看所有問題，新的在前
// @Summary     List help questions
// @Tags        help
// @Produce     json
// @Success     200 {array}  model.Question
// @Failure     401 {object} dto.HTTPError
// @Failure     403 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Router      /api/questions [get]
func ListQuestionsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := listQuestions(c.Request().Context(), db)
		if err != nil {
			c.Logger().Errorf("list questions: %v", err)
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "failed to list questions"})
		}
		return c.JSON(http.StatusOK, list)
	}
}
