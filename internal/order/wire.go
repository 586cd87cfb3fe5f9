package order

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"catering/internal/access"
	"catering/internal/infrastructure/mysql"
	"catering/internal/order/controller"
	"catering/internal/order/repository"
	"catering/internal/order/service"
	"catering/internal/order/usecase"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.OrderController {
	orderRepo := repository.NewMySQLOrderRepository(db)
	historyRepo := repository.NewMySQLStatusHistoryRepository(db)

	txManager := mysql.NewTxManager(db, 5*time.Second)
	notifier := service.NewLogStatusNotifier(logger)
	statusSvc := service.NewStatusService(txManager, orderRepo, historyRepo, notifier, logger)

	useCase := usecase.NewOrderUseCase(
		orderRepo,
		historyRepo,
		statusSvc,
		access.NewPolicy(),
		txManager,
		logger,
	)

	return controller.NewOrderController(useCase, logger)
}
