package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/polica/daftar"
	"github.com/polica/daftar/api/middleware"
	"github.com/polica/daftar/config"
	"github.com/polica/daftar/internal/apierror"
)

type Api struct {
	daftar *daftar.Daftar
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/students", a.CreateStudent)
	router.GET("/students/:id", a.GetStudent)
	router.GET("/students", a.GetAllStudents)
	router.PUT("/students/:id", a.UpdateStudent)
	router.DELETE("/students/:id", a.DeleteStudent)
	router.GET("/students/:id/balance-report", a.GetBalanceReport)
	router.GET("/students/:id/enrollments", a.GetStudentEnrollments)

	router.POST("/groups", a.CreateStudyGroup)
	router.GET("/groups/:id", a.GetStudyGroup)
	router.GET("/groups", a.GetAllStudyGroups)
	router.PUT("/groups/:id", a.UpdateStudyGroup)
	router.DELETE("/groups/:id", a.DeleteStudyGroup)
	router.POST("/enrollments", a.EnrollStudent)
	router.DELETE("/groups/:id/students/:student_id", a.UnenrollStudent)

	router.POST("/payments", a.RecordPayment)
	router.GET("/payments/:id", a.GetPayment)
	router.PUT("/payments/:id", a.CorrectPayment)
	router.DELETE("/payments/:id", a.DeletePayment)

	router.POST("/student-bonuses", a.RecordBonus)
	router.GET("/student-bonuses/:id", a.GetBonus)
	router.PUT("/student-bonuses/:id", a.CorrectBonus)
	router.DELETE("/student-bonuses/:id", a.DeleteBonus)

	router.POST("/balance-changes", a.RecordAdjustment)
	router.GET("/balance-changes/:id", a.GetAdjustment)
	router.PUT("/balance-changes/:id", a.CorrectAdjustment)
	router.DELETE("/balance-changes/:id", a.DeleteAdjustment)

	router.GET("/transactions/:id", a.GetStudyCharge)
	router.DELETE("/transactions/:id", a.DeleteStudyCharge)

	router.GET("/drawers", a.GetDrawers)

	router.POST("/users", a.CreateUser)
	router.GET("/users", a.GetAllUsers)
	router.POST("/login", a.Login)

	router.POST("/charges/generate", a.GenerateMonthlyCharges)
	router.POST("/debtors/notify", a.NotifyDebtors)
	router.GET("/queues", a.GetQueues)
	return a.router
}

func NewAPI(d *daftar.Daftar) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.NewAuthMiddleware(d).Authenticate())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{daftar: d, router: r}
}

// handleError maps service errors to HTTP responses. APIError codes drive the
// status; anything else reads as an internal failure.
func handleError(c *gin.Context, err error) {
	status := apierror.MapErrorToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		if apiErr, ok := err.(apierror.APIError); ok {
			c.JSON(status, gin.H{"error": apiErr.Message})
			return
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
