package service

import (
	"github.com/smartcity/dashboard/internal/domain"
)

// DataRepository is re-exported from domain for convenience
type DataRepository = domain.UploadLogRepository

// DatasetStore is the part of the store the services read and write.
type DatasetStore interface {
	Replace(series domain.Series) (domain.SeriesChange, error)
	Get(id domain.SeriesID) domain.Series
	RecordUpload(fileName string)
	Status() domain.UploadStatus
	KPIs() domain.KpiSnapshot
	Weather() domain.WeatherSnapshot
}
