package logger

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Field helpers for billing log lines, so keys stay consistent across services.

func Period(key string) zap.Field { return zap.String("period", key) }

func Cohort(name string) zap.Field { return zap.String("cohort", name) }

func Actor(actor string) zap.Field { return zap.String("actor", actor) }

func EntryID(id uuid.UUID) zap.Field { return zap.String("entry_id", id.String()) }

func PayerID(id uuid.UUID) zap.Field { return zap.String("payer_id", id.String()) }

func ChargeKey(key string) zap.Field { return zap.String("charge_key", key) }
