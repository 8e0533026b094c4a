//go:build unit

package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"class-booking/internal/handler/api"
	resdto "class-booking/internal/handler/dto/response"
	"class-booking/internal/pkg/errs"
	"class-booking/internal/usecase/catalog"
	"class-booking/internal/usecase/state"
	"class-booking/tests/common/builder"
	"class-booking/tests/common/docstoretest"
	"class-booking/tests/common/httptest"
	"class-booking/tests/common/testutil"
	catalogmock "class-booking/tests/mock/catalog"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const slotsColl = "class"

type SlotHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockCatalog *catalogmock.MockCatalog
	docs        *docstoretest.Faulty
	state       *state.Store
	handler     *api.SlotHandler
}

func (s *SlotHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCatalog = catalogmock.NewMockCatalog(s.mockCtrl)

	s.docs = docstoretest.NewFaulty()
	builder.Seed(s.T(), s.docs, slotsColl,
		builder.NewSlotBuilder().WithID("mon"),
		builder.NewSlotBuilder().WithID("tue").WithDay("Tuesday").AsFull(),
	)
	s.state = state.NewStore(s.docs, slotsColl, nil)
	s.Require().NoError(s.state.Load(context.Background()))

	s.handler = api.NewSlotHandler(s.state, s.mockCatalog)

	s.router.GET("/slots", s.handler.List)
	s.router.POST("/slots", s.handler.Create)
	s.router.POST("/slots/refresh", s.handler.Refresh)
	s.router.POST("/slots/import", s.handler.Import)
	s.router.GET("/slots/export", s.handler.Export)
}

func (s *SlotHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestSlotHandlerSuite(t *testing.T) {
	suite.Run(t, new(SlotHandlerTestSuite))
}

type testCaseSlot struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

// ================================================================================
// TestList / TestRefresh
// ================================================================================

func (s *SlotHandlerTestSuite) TestList() {
	s.Run("success: returns slots in store order with bookable flag", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/slots", nil)

		var body resdto.SlotListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body.Slots, 2)
		s.Equal("mon", body.Slots[0].ID)
		s.Equal(3, body.Slots[0].SlotsLeft)
		s.True(body.Slots[0].Bookable)
		s.Equal("tue", body.Slots[1].ID)
		s.False(body.Slots[1].Bookable)
		s.Equal(s.state.Version(), body.Version)
	})
}

func (s *SlotHandlerTestSuite) TestRefresh() {
	s.Run("success: picks up remote changes", func() {
		builder.Seed(s.T(), s.docs, slotsColl, builder.NewSlotBuilder().WithID("mon").WithSlotsLeft(1))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/slots/refresh", nil)

		var body resdto.SlotListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(1, body.Slots[0].SlotsLeft)
	})

	s.Run("error: 502 keeps previous slots on fetch failure", func() {
		s.docs.FailList(errors.New("connection reset"))
		defer s.docs.FailList(nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/slots/refresh", nil)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadGateway, "Error fetching slots")
		s.Len(s.state.Slots(), 2)
	})
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *SlotHandlerTestSuite) TestCreate() {
	reqBody := builder.NewSlotBuilder().BuildCreateRequestDTO()
	created := builder.NewSlotBuilder().WithID("new-id").MustBuildDomain(s.T())

	validation := []testCaseSlot{
		{name: "slotsLeft zero is allowed", mutate: testutil.Field("slotsLeft", 0), expectCode: http.StatusCreated},
		{name: "negative slotsLeft", mutate: testutil.Field("slotsLeft", -1), expectCode: http.StatusBadRequest},
		{name: "missing field: day (required)", mutate: testutil.Field("day", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: time (required)", mutate: testutil.Field("time", nil), expectCode: http.StatusBadRequest},
		{name: "missing field: slotsLeft (required)", mutate: testutil.Field("slotsLeft", nil), expectCode: http.StatusBadRequest},
		{name: "day too long", mutate: testutil.Field("day", strings.Repeat("d", 65)), expectCode: http.StatusBadRequest},
	}

	s.Run("success: returns 201 Created", func() {
		s.mockCatalog.EXPECT().CreateSlot(gomock.Any(), "Monday", "10:00", 3).
			Return(created, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/slots", reqBody)

		var body resdto.SlotResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal("new-id", body.ID)
		s.True(body.Bookable)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		for _, tc := range validation {
			s.Run(tc.name, func() {
				if tc.expectCode == http.StatusCreated {
					s.mockCatalog.EXPECT().CreateSlot(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
						Return(created, nil).Times(1)
				}
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/slots", requestMap)
				s.Equal(tc.expectCode, rec.Code, rec.Body.String())
			})
		}
	})

	s.Run("error: 400 when the catalog rejects the slot", func() {
		s.mockCatalog.EXPECT().CreateSlot(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errors.New("blank"), errs.ErrDomainValidation)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/slots", reqBody)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 500 on unexpected failure", func() {
		s.mockCatalog.EXPECT().CreateSlot(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("boom")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/slots", reqBody)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}

// ================================================================================
// TestImport / TestExport
// ================================================================================

func (s *SlotHandlerTestSuite) TestImport() {
	s.Run("success: returns imported count and skipped rows", func() {
		s.mockCatalog.EXPECT().ImportSlots(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r io.Reader) (*catalog.ImportResult, error) {
				b, err := io.ReadAll(r)
				s.Require().NoError(err)
				s.Equal("workbook-bytes", string(b))
				return &catalog.ImportResult{Imported: 2, Skipped: []catalog.RowError{{Row: 4, Reason: "day is empty"}}}, nil
			}).Times(1)

		rec := httptest.PerformUpload(s.T(), s.router, "/slots/import", "file", "slots.xlsx", []byte("workbook-bytes"))

		var body resdto.ImportResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(2, body.Imported)
		s.Require().Len(body.Skipped, 1)
		s.Equal(4, body.Skipped[0].Row)
	})

	s.Run("error: 400 without a file", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/slots/import", nil)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "File is required")
	})

	s.Run("error: 400 on unreadable workbook", func() {
		s.mockCatalog.EXPECT().ImportSlots(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errors.New("zip: not a valid zip file"), errs.ErrDomainValidation)).Times(1)

		rec := httptest.PerformUpload(s.T(), s.router, "/slots/import", "file", "slots.xlsx", []byte("junk"))

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})
}

func (s *SlotHandlerTestSuite) TestExport() {
	s.Run("success: streams the workbook as an attachment", func() {
		s.mockCatalog.EXPECT().ExportSlots(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w io.Writer) (int, error) {
				_, err := w.Write([]byte("xlsx"))
				return 2, err
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/slots/export", nil)

		s.Equal(http.StatusOK, rec.Code)
		s.Equal("xlsx", rec.Body.String())
		httptest.AssertHeaders(s.T(), rec, map[string]string{
			"Content-Disposition": `attachment; filename="slots.xlsx"`,
			"Content-Type":        "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		})
	})
}
