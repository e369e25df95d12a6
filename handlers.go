package main

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/config"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/ingest"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models/reports"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/store"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
)

// App wires the HTTP handlers to the store and keeps an in-memory snapshot of
// the datasets, refreshed whenever the store version moves.
type App struct {
	store  *store.Store
	logger *logrus.Logger

	mu       sync.Mutex
	snapshot *datasets
	version  int64
}

type datasets struct {
	Sales     []models.Sale
	Purchases []models.Purchase
	Expenses  []models.Expense
	Payroll   []models.PayrollEntry
	Stock     []models.StockSnapshot
	Goals     []models.SalesGoal
}

func NewApp(st *store.Store, logger *logrus.Logger) *App {
	return &App{store: st, logger: logger}
}

func (a *App) loadDatasets(c *gin.Context) (*datasets, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	version := a.store.Version()
	if a.snapshot != nil && a.version == version {
		return a.snapshot, nil
	}

	ctx := c.Request.Context()
	var (
		snap datasets
		err  error
	)
	if snap.Sales, err = a.store.LoadSales(ctx); err != nil {
		return nil, err
	}
	if snap.Purchases, err = a.store.LoadPurchases(ctx); err != nil {
		return nil, err
	}
	if snap.Expenses, err = a.store.LoadExpenses(ctx); err != nil {
		return nil, err
	}
	if snap.Payroll, err = a.store.LoadPayroll(ctx); err != nil {
		return nil, err
	}
	if snap.Stock, err = a.store.LoadStock(ctx); err != nil {
		return nil, err
	}
	if snap.Goals, err = a.store.LoadGoals(ctx); err != nil {
		return nil, err
	}

	a.snapshot = &snap
	a.version = version
	return a.snapshot, nil
}

func (a *App) fail(c *gin.Context, status int, module, funcName string, err error) {
	config.LogError(a.logger, module, funcName, "", nil, err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindFilter(c *gin.Context, filter any) bool {
	if err := c.ShouldBindJSON(filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"validation": utils.ProcessValidationErrors(err)})
		return false
	}
	return true
}

// POST /api/datasets/:kind
func (a *App) uploadDataset(c *gin.Context) {
	kind, err := models.ParseDatasetKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		a.fail(c, http.StatusBadRequest, "handlers", "uploadDataset", err)
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	var count int
	switch kind {
	case models.DatasetSales:
		records, perr := ingest.ParseSales(file)
		if perr != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": perr.Error()})
			return
		}
		err = a.store.ReplaceSales(ctx, records)
		count = len(records)
	case models.DatasetPurchases:
		records, perr := ingest.ParsePurchases(file)
		if perr != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": perr.Error()})
			return
		}
		err = a.store.ReplacePurchases(ctx, records)
		count = len(records)
	case models.DatasetExpenses:
		records, perr := ingest.ParseExpenses(file)
		if perr != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": perr.Error()})
			return
		}
		err = a.store.ReplaceExpenses(ctx, records)
		count = len(records)
	case models.DatasetHR:
		records, perr := ingest.ParsePayroll(file)
		if perr != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": perr.Error()})
			return
		}
		err = a.store.ReplacePayroll(ctx, records)
		count = len(records)
	case models.DatasetStock:
		records, perr := ingest.ParseStock(file)
		if perr != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": perr.Error()})
			return
		}
		err = a.store.ReplaceStock(ctx, records)
		count = len(records)
	}
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "uploadDataset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "rows": count})
}

// GET /api/datasets
func (a *App) datasetCounts(c *gin.Context) {
	counts, err := a.store.Counts(c.Request.Context())
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "datasetCounts", err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// POST /api/goals
func (a *App) uploadGoals(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		a.fail(c, http.StatusBadRequest, "handlers", "uploadGoals", err)
		return
	}
	defer file.Close()

	goals, err := ingest.ParseGoals(file)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := a.store.ReplaceGoals(c.Request.Context(), goals); err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "uploadGoals", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": len(goals)})
}

// POST /api/reports/sales
func (a *App) salesReport(c *gin.Context) {
	var filter models.SalesFilter
	if !bindFilter(c, &filter) {
		return
	}
	data, err := a.loadDatasets(c)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "salesReport", err)
		return
	}

	key := reports.ReportCacheKey("sales", a.store.Version(), filter)
	report, err := reports.CachedReport(key, func() (*reports.SalesReport, error) {
		filtered := models.FilterSales(data.Sales, filter)
		return reports.BuildSalesReport(filtered, data.Sales, filter), nil
	})
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "salesReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// POST /api/reports/purchases
func (a *App) purchasesReport(c *gin.Context) {
	var filter models.PurchaseFilter
	if !bindFilter(c, &filter) {
		return
	}
	data, err := a.loadDatasets(c)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "purchasesReport", err)
		return
	}

	key := reports.ReportCacheKey("purchases", a.store.Version(), filter)
	report, err := reports.CachedReport(key, func() (*reports.PurchasesReport, error) {
		filtered := models.FilterPurchases(data.Purchases, filter)
		return reports.BuildPurchasesReport(filtered, data.Sales, time.Now()), nil
	})
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "purchasesReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// POST /api/reports/expenses
func (a *App) expensesReport(c *gin.Context) {
	var filter models.ExpenseFilter
	if !bindFilter(c, &filter) {
		return
	}
	data, err := a.loadDatasets(c)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "expensesReport", err)
		return
	}

	key := reports.ReportCacheKey("expenses", a.store.Version(), filter)
	report, err := reports.CachedReport(key, func() (*reports.ExpensesReport, error) {
		filtered := models.FilterExpenses(data.Expenses, filter)
		return reports.BuildExpensesReport(filtered, data.Expenses), nil
	})
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "expensesReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /api/reports/expenses/export
func (a *App) expensesExport(c *gin.Context) {
	data, err := a.loadDatasets(c)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "expensesExport", err)
		return
	}
	report := reports.BuildExpensesReport(data.Expenses, data.Expenses)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=gastos.xlsx")
	if err := reports.WriteExpensesWorkbook(c.Writer, report); err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "expensesExport", err)
	}
}

// POST /api/reports/hr
func (a *App) hrReport(c *gin.Context) {
	var filter models.HRFilter
	if !bindFilter(c, &filter) {
		return
	}
	data, err := a.loadDatasets(c)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "hrReport", err)
		return
	}

	key := reports.ReportCacheKey("hr", a.store.Version(), filter)
	report, err := reports.CachedReport(key, func() (*reports.HRReport, error) {
		filtered := models.FilterPayroll(data.Payroll, filter)
		return reports.BuildHRReport(filtered, data.Payroll, filter), nil
	})
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "hrReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// POST /api/reports/stock
func (a *App) stockReport(c *gin.Context) {
	var filter models.StockFilter
	if !bindFilter(c, &filter) {
		return
	}
	data, err := a.loadDatasets(c)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "stockReport", err)
		return
	}

	key := reports.ReportCacheKey("stock", a.store.Version(), filter)
	report, err := reports.CachedReport(key, func() (*reports.StockReport, error) {
		filtered := models.FilterStock(data.Stock, filter)
		ctx := reports.StockContext{
			Sales:     data.Sales,
			Purchases: data.Purchases,
			Expenses:  data.Expenses,
			Payroll:   data.Payroll,
		}
		return reports.BuildStockReport(filtered, data.Stock, filter, ctx), nil
	})
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "stockReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// POST /api/reports/pl
func (a *App) profitAndLossReport(c *gin.Context) {
	var filter models.PeriodFilter
	if !bindFilter(c, &filter) {
		return
	}
	data, err := a.loadDatasets(c)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "profitAndLossReport", err)
		return
	}

	key := reports.ReportCacheKey("pl", a.store.Version(), filter)
	report, err := reports.CachedReport(key, func() (*reports.ProfitAndLossReport, error) {
		return reports.BuildProfitAndLossReport(data.Sales, data.Purchases, data.Expenses, data.Payroll, filter), nil
	})
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "profitAndLossReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /api/reports/goals
func (a *App) goalComplianceReport(c *gin.Context) {
	data, err := a.loadDatasets(c)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "handlers", "goalComplianceReport", err)
		return
	}

	filter := models.SalesFilter{}
	if branch := c.Query("branch"); branch != "" {
		filter.Branches = []string{branch}
	}
	selectedPeriod := ""
	if year, month := c.Query("year"), c.Query("month"); year != "" && month != "" {
		y, yerr := strconv.Atoi(year)
		m, merr := strconv.Atoi(month)
		if yerr != nil || merr != nil || m < 1 || m > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year and month must be numeric, month between 1 and 12"})
			return
		}
		selectedPeriod = fmt.Sprintf("%d-%02d", y, m)
	}

	goals := reports.RecomputeGoalActuals(data.Goals, data.Sales)
	report := reports.BuildGoalComplianceReport(goals, filter, selectedPeriod)
	c.JSON(http.StatusOK, report)
}
