// Package database handles SQL connections for the sql rank backend.
//
// It provides a wrapper around GORM to configure MySQL or SQLite connections
// based on the application's configuration. The rank feature migrates and
// queries its own table; this package only owns the connection pool.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//	defer database.Close(db)
package database
