package main

import (
	"context"
	"net/http"
	"shopfloor/bizerror"
	"shopfloor/client/es"
	"shopfloor/common"
	"shopfloor/config"
	"shopfloor/domain/costing"
	"shopfloor/domain/costing/costingrest"
	"shopfloor/domain/production/productionrest"
	"shopfloor/domain/sequencing"
	"shopfloor/domain/sequencing/sequencingrest"
	"shopfloor/event"
	"shopfloor/idgen"
	"shopfloor/indices"
	"shopfloor/infra/tracing"
	"shopfloor/persistence"
	"shopfloor/schema"
	"shopfloor/servehttp"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config failed %v\n", err)
	}
	common.ConfigureLogger(cfg.ServiceName, cfg.LogFormat, cfg.LogLevel)
	if cfg.MachineID != idgen.MachineID {
		// id workers are built at package init, a machine id only present in .env comes too late
		logrus.Warnf("machine id %d ignored, id workers run with %d", cfg.MachineID, idgen.MachineID)
	}
	logrus.Infof("service %s start", common.GetServiceName())

	closer, err := tracing.InitGlobalTracer(cfg.ServiceName)
	if err != nil {
		logrus.Fatalf("init tracer failed %v\n", err)
	}
	defer closer.Close()

	// create database (no conflict)
	if cfg.Database.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(cfg.Database.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: &cfg.Database}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database conneciton failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	if err := schema.Migrate(ds.GormDB(context.Background())); err != nil {
		logrus.Fatalf("database migration failed %v\n", err)
	}

	costing.TargetValuePerMinute = cfg.TargetValuePerMinute
	costing.Tolerance = cfg.ProfitabilityTolerance
	sequencing.PrimaryOperationPattern = cfg.PrimaryOperationPattern

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling())
	engine.Use(tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": common.GetServiceName(), "instance": common.GetServiceInstance()})
	})

	if cfg.ElasticsearchEnabled {
		es.CreateClientFromEnv()
		event.EventHandlers = append(event.EventHandlers, indices.IndexRecordEventHandle)
		indices.SyncLimiter = rate.NewLimiter(rate.Limit(cfg.IndexSyncRate), 1)
		crontab, err := indices.StartCron(cfg.IndexCron)
		if err != nil {
			logrus.Fatalf("schedule index sync failed %v\n", err)
		}
		defer crontab.Stop()
		indices.RegisterIndicesRestAPI(engine)
	}

	productionrest.RegisterProductionRestAPI(engine)
	sequencingrest.RegisterSequencingRestAPI(engine)
	costingrest.RegisterCostingRestAPI(engine)

	if err := servehttp.StartHTTPServer(engine, cfg.ListenAddr); err != nil {
		logrus.Errorf("http server exit %v\n", err)
	}
}
