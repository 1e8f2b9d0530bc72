// Package emulator manages the local Google Cloud Firestore emulator.
//
// It wraps the two operational chores of local development: launching
// `gcloud emulators firestore start` on 0.0.0.0:8816, and freeing that port by
// killing whatever process holds it. Process discovery uses gopsutil so the
// kill works without lsof.
//
// # Usage
//
//	err := emulator.Run(ctx, cfg.Emulator, os.Stdout, os.Stderr)
//
//	port, _ := cfg.Emulator.Port()
//	killed, err := emulator.KillPort(ctx, port)
package emulator
