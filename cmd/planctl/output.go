package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"stokcast/backend/internal/domain"
)

type productReport struct {
	Forecast       domain.ProductForecastResponse `json:"forecast"`
	Recommendation domain.Recommendation          `json:"recommendation"`
}

func writeJSONOutput(out io.Writer, payload any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func writePlan(out io.Writer, format string, plan domain.PurchasePlanResponse) error {
	if format == "json" {
		return writeJSONOutput(out, plan)
	}

	fmt.Fprintf(out, "PURCHASE PLAN %s (data until %s, window policy %s)\n\n",
		plan.TargetPeriod.LongLabel(), plan.DataUntilLabel, plan.WindowPolicy)
	if len(plan.Items) == 0 {
		fmt.Fprintln(out, "no sales history, nothing to plan")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PRODUCT\tSUPPLIER\tMONTHS\tN\tMAPE\tFORECAST\tSAFETY\tSTOCK\tORDER\t")
	for _, item := range plan.Items {
		rec := item.Recommendation
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f%%\t%d\t%d\t%d\t%d %s\t\n",
			item.Product.Name, item.SupplierName, rec.DataMonths, rec.WindowUsed, rec.MAPE,
			rec.Forecast, rec.SafetyStock, rec.CurrentStock, rec.OrderQuantity, item.Product.Unit)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d products\n", plan.Total)
	return nil
}

func writeProductReport(out io.Writer, format string, report productReport) error {
	if format == "json" {
		return writeJSONOutput(out, report)
	}

	fc := report.Forecast
	fmt.Fprintf(out, "%s (%s), SMA N=%d\n\n", fc.Product.Name, fc.Product.ID, fc.Window)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MONTH\tACTUAL\tFORECAST\tERROR\tAPE\t")
	for _, point := range fc.Result.Points {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			point.PeriodLabel, intCell(point.Actual), floatCell(point.Forecast, ""), floatCell(point.Error, ""), floatCell(point.APE, "%"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	m := fc.Result.Metrics
	fmt.Fprintf(out, "\nMAD %.2f  MSE %.2f  MAPE %.2f%%  (best N=%d)\n", m.MAD, m.MSE, m.MAPE, fc.BestWindow)

	rec := report.Recommendation
	fmt.Fprintf(out, "\nRecommendation for %s (%s window N=%d, %d months of data)\n",
		rec.TargetLabel, rec.WindowPolicy, rec.WindowUsed, rec.DataMonths)
	fmt.Fprintf(out, "  forecast %d + safety stock %d - stock %d = order %d\n",
		rec.Forecast, rec.SafetyStock, rec.CurrentStock, rec.OrderQuantity)
	return nil
}

func intCell(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func floatCell(v *float64, suffix string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%s", *v, suffix)
}
