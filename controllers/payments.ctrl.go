package controllers

import (
	"net/http"
	"strconv"

	"github.com/coopfin/coophub/lib/responses"
	"github.com/coopfin/coophub/lib/service"
	"github.com/labstack/echo/v4"
)

// PaymentsController : Payments controller struct
type PaymentsController struct {
	svc *service.CoophubService
}

func NewPaymentsController(svc *service.CoophubService) *PaymentsController {
	return &PaymentsController{svc: svc}
}

// Get : Fetch one payment
func (controller *PaymentsController) Get(c echo.Context) error {
	paymentId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	payment, err := controller.svc.FindPayment(c.Request().Context(), paymentId)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, payment)
}

type AttachReceiptRequestBody struct {
	ReceiptRef string `json:"receipt_ref"`
}

// AttachReceipt : Attach a receipt reference to a payment. An empty body
// gets a generated reference.
func (controller *PaymentsController) AttachReceipt(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	paymentId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	reqBody := AttachReceiptRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	payment, err := controller.svc.AttachReceiptRef(c.Request().Context(), paymentId, reqBody.ReceiptRef, userID)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, payment)
}
