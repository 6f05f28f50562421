package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"healthcmd/internal/backend"
	"healthcmd/internal/models"
	"healthcmd/internal/producer"
	"healthcmd/internal/service"
	"healthcmd/internal/views"
)

// console 操作员控制台：站在 DOM 输入位置上的手动输入面
type console struct {
	monitor    *service.Monitor
	reconciler *producer.Reconciler
	client     *backend.Client
	display    *views.Display
	status     *views.Status
	notifier   *views.Notifier
	chart      *views.SeriesBuffer
}

func newConsole(
	monitor *service.Monitor,
	reconciler *producer.Reconciler,
	client *backend.Client,
	display *views.Display,
	status *views.Status,
	notifier *views.Notifier,
	chart *views.SeriesBuffer,
) *console {
	return &console{
		monitor:    monitor,
		reconciler: reconciler,
		client:     client,
		display:    display,
		status:     status,
		notifier:   notifier,
		chart:      chart,
	}
}

// run 命令循环，EOF 或 quit 退出
func (c *console) run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("healthcmd console ready (type 'help')")

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		args := strings.Fields(line)
		if args[0] == "quit" || args[0] == "exit" {
			return
		}
		c.handle(ctx, args)
	}
}

func (c *console) handle(ctx context.Context, args []string) {
	switch args[0] {
	case "help":
		c.printHelp()
	case "status":
		c.printStatus()
	case "set":
		if len(args) != 3 {
			fmt.Println("usage: set <field> <value>")
			return
		}
		f, ok := parseField(args[1])
		if !ok || !f.IsClinical() {
			fmt.Println("unknown field:", args[1])
			return
		}
		c.reconciler.ApplyVital(f, args[2])
	case "bp":
		if len(args) != 3 {
			fmt.Println("usage: bp <systolic> <diastolic>")
			return
		}
		c.reconciler.ApplyBloodPressure(args[1], args[2])
	case "setall":
		if len(args) != 6 {
			fmt.Println("usage: setall <hr> <spo2> <systolic> <diastolic> <temp>")
			return
		}
		c.reconciler.ApplyAll(map[models.Field]string{
			models.FieldHeartRate:   args[1],
			models.FieldSpO2:        args[2],
			models.FieldSystolic:    args[3],
			models.FieldDiastolic:   args[4],
			models.FieldTemperature: args[5],
		})
	case "reset":
		c.monitor.Reset()
	case "mode":
		if len(args) != 2 {
			fmt.Println("current mode:", c.monitor.Mode())
			return
		}
		var err error
		switch args[1] {
		case "local":
			err = c.monitor.SwitchToLocal(ctx)
		case "backend":
			err = c.monitor.SwitchToBackend(ctx)
		default:
			fmt.Println("usage: mode local|backend")
			return
		}
		if err != nil {
			fmt.Println("mode switch failed:", err)
		}
	case "auto":
		if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
			fmt.Println("usage: auto on|off")
			return
		}
		c.monitor.SetAutoUpdate(args[1] == "on")
	case "push":
		if err := c.monitor.PushCurrent(ctx); err != nil {
			fmt.Println("push failed:", err)
		}
	case "predict":
		c.predict(ctx)
	case "alerts":
		c.alerts(ctx)
	case "history":
		c.history(ctx, args[1:])
	case "simulate":
		c.simulate(ctx)
	default:
		fmt.Println("unknown command:", args[0], "(type 'help')")
	}
}

func (c *console) printHelp() {
	fmt.Println(`commands:
  status                                 show current vitals and statuses
  set <field> <value>                    manual single-field update (hr|spo2|sys|dia|temp)
  bp <systolic> <diastolic>              manual blood-pressure pair update
  setall <hr> <spo2> <sys> <dia> <temp>  all-or-nothing bulk update
  reset                                  restore baseline vitals
  mode [local|backend]                   show or switch producer mode
  auto on|off                            toggle simulator auto-update (local mode)
  push                                   send current vitals to backend
  predict                                request backend risk prediction
  alerts                                 fetch active backend alerts
  history [limit] [hours]                replay backend history into the chart
  simulate                               ask backend to generate one reading
  quit                                   exit`)
}

func (c *console) printStatus() {
	rec := c.monitor.Snapshot()
	fmt.Println("mode:", c.monitor.Mode())
	for _, f := range models.AllFields() {
		line := c.display.Line(f)
		if line == "" {
			line = views.FormatValue(f, rec.Get(f))
		}
		if f.IsClinical() {
			fmt.Printf("  %-14s %-12s [%s]\n", f.Label(), line, c.status.FieldStatus(f))
		} else {
			fmt.Printf("  %-14s %s\n", f.Label(), line)
		}
	}
	fmt.Println("overall:", c.status.Overall())
	if analysis := c.monitor.LastAnalysis(); analysis != nil && analysis.OverallRiskLevel != nil {
		fmt.Println("backend risk:", *analysis.OverallRiskLevel)
	}
	if message, kind, visible := c.notifier.Current(); visible {
		fmt.Printf("notice [%s]: %s\n", kind, message)
	}
}

func (c *console) predict(ctx context.Context) {
	if c.client == nil {
		fmt.Println("backend not configured")
		return
	}
	reading := models.ReadingFromRecord(c.client.SoldierID(), c.monitor.Snapshot(), "")
	prediction, err := c.client.PredictRisk(ctx, reading)
	if err != nil {
		fmt.Println("predict failed:", err)
		return
	}
	fmt.Println("prediction:", string(prediction))
}

func (c *console) alerts(ctx context.Context) {
	if c.client == nil {
		fmt.Println("backend not configured")
		return
	}
	alerts, err := c.client.Alerts(ctx)
	if err != nil {
		fmt.Println("alerts failed:", err)
		return
	}
	if len(alerts) == 0 {
		fmt.Println("no active alerts")
		return
	}
	for _, alert := range alerts {
		fmt.Println(" -", string(alert))
	}
}

// history 拉取历史读数并整体替换图表序列
func (c *console) history(ctx context.Context, args []string) {
	if c.client == nil {
		fmt.Println("backend not configured")
		return
	}
	limit, hours := 30, 24
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			limit = n
		}
	}
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			hours = n
		}
	}

	payloads, err := c.client.History(ctx, limit, hours)
	if err != nil {
		fmt.Println("history failed:", err)
		return
	}

	// 缺失字段回填当前值后重放
	base := c.monitor.Snapshot()
	records := make([]models.VitalsRecord, 0, len(payloads))
	for i := range payloads {
		rec := base
		for _, fv := range payloads[i].FieldValues() {
			if fv.Value != nil {
				rec.Set(fv.Field, *fv.Value)
			}
		}
		records = append(records, rec)
	}
	c.chart.Replace(records)
	fmt.Printf("chart replaced with %d history points\n", len(records))
}

func (c *console) simulate(ctx context.Context) {
	if c.client == nil {
		fmt.Println("backend not configured")
		return
	}
	if _, err := c.client.Simulate(ctx); err != nil {
		fmt.Println("simulate failed:", err)
		return
	}
	fmt.Println("backend simulation triggered")
}

// parseField 控制台字段别名
func parseField(name string) (models.Field, bool) {
	switch strings.ToLower(name) {
	case "hr", "heart", "heart_rate":
		return models.FieldHeartRate, true
	case "spo2", "o2":
		return models.FieldSpO2, true
	case "sys", "systolic":
		return models.FieldSystolic, true
	case "dia", "diastolic":
		return models.FieldDiastolic, true
	case "temp", "temperature":
		return models.FieldTemperature, true
	case "alt", "altitude":
		return models.FieldAltitude, true
	case "ext", "ext_temp":
		return models.FieldExtTemp, true
	case "hum", "humidity":
		return models.FieldHumidity, true
	}
	return 0, false
}
