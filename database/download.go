package database

import "context"

func CreateDownload(ctx context.Context, d *Download) error {
	return db.WithContext(ctx).Create(d).Error
}

// GetRecentDownloads returns at most limit downloads, newest first.
func GetRecentDownloads(ctx context.Context, limit int) ([]Download, error) {
	var downloads []Download
	err := db.WithContext(ctx).Order("id desc").Limit(limit).Find(&downloads).Error
	return downloads, err
}

func GetDownloadsByResource(ctx context.Context, resource string) ([]Download, error) {
	var downloads []Download
	err := db.WithContext(ctx).Where("resource = ?", resource).Order("id").Find(&downloads).Error
	return downloads, err
}

func CountDownloads(ctx context.Context) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&Download{}).Count(&n).Error
	return n, err
}
