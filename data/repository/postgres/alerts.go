package postgres

import (
	"context"
	"log/slog"

	"github.com/finsight/finsight/internal/converter/dbConverter"
	"github.com/finsight/finsight/internal/model"
	"github.com/finsight/finsight/internal/model/dbModel"
	"github.com/finsight/finsight/utils"
	"github.com/shopspring/decimal"
)

func (r *Postgres) InsertAlert(ctx context.Context, ownerID int64, symbol string, condition model.AlertCondition, threshold decimal.Decimal) (alertID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO alerts(owner_id, symbol, condition, threshold)
		VALUES($1, $2, $3, $4)
		RETURNING alert_id
		`

	slog.Debug("InsertAlert start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertAlert failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertAlert completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, ownerID, symbol, string(condition), threshold).Scan(&alertID)
	if err != nil {
		return 0, err
	}

	return alertID, nil
}

func (r *Postgres) getAlerts(ctx context.Context, query string, args ...interface{}) (alerts []model.Alert, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("getAlerts start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("getAlerts failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("getAlerts completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbAlert dbModel.Alert
		err = rows.StructScan(&dbAlert)
		if err != nil {
			return nil, err
		}

		alert, err := dbConverter.ConvertAlert(dbAlert)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	return alerts, nil
}

// GetPendingAlerts returns every alert that has not fired yet, across owners.
func (r *Postgres) GetPendingAlerts(ctx context.Context) ([]model.Alert, error) {
	query := `
		SELECT alert_id, owner_id, symbol, condition, threshold, triggered, dt_create
		FROM alerts
		WHERE triggered = false
		ORDER BY alert_id
		`
	return r.getAlerts(ctx, query)
}

func (r *Postgres) GetAlertsForOwner(ctx context.Context, ownerID int64) ([]model.Alert, error) {
	query := `
		SELECT alert_id, owner_id, symbol, condition, threshold, triggered, dt_create
		FROM alerts
		WHERE owner_id = $1
		ORDER BY alert_id
		`
	return r.getAlerts(ctx, query, ownerID)
}

// MarkTriggered flips the alert to triggered only if it is still pending and
// reports whether this call made the transition. A false return means another
// evaluation got there first; callers must not notify in that case.
func (r *Postgres) MarkTriggered(ctx context.Context, alertID int64) (updated bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `UPDATE alerts SET triggered = true WHERE alert_id = $1 AND triggered = false`

	slog.Debug("MarkTriggered start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("MarkTriggered failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("MarkTriggered completed", slog.String("rqID", rqID), slog.Bool("updated", updated))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, alertID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}
