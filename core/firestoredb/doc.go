// Package firestoredb creates Google Cloud Firestore clients.
//
// Local development runs against the Firestore emulator: the Makefile exports
// FIRESTORE_EMULATOR_HOST=[::1]:8816 and PROJECT_ID (the repository directory
// name) before starting the API. Production uses application default
// credentials and the real project id.
//
// # Usage
//
//	client, err := firestoredb.Connect(ctx, cfg.Firestore)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package firestoredb
