package main

import (
	"bytes"
	"context"
	"io"

	"cloud.google.com/go/storage"
)

// NOTE: this uses a service account, you must set a environment variable
// see https://cloud.google.com/storage/docs/reference/libraries

func bytesToGCP(BUCKET_NAME, objectName string, data []byte, setObjectPolicies bool) error {
	ctx := context.Background()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return err
	}

	bucket := client.Bucket(BUCKET_NAME)

	obj := bucket.Object(objectName)
	w := obj.NewWriter(ctx)

	if setObjectPolicies {
		w.CacheControl = "no-cache"
		w.ACL = []storage.ACLRule{{Entity: storage.AllUsers, Role: storage.RoleReader}}
	}

	r := bytes.NewReader(data)
	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		if err != nil && err != io.EOF {
			ErrorLog.Printf("%v\n", err)
			break
		}
		if n == 0 {
			break
		}

		if _, err := w.Write(buf[:n]); err != nil {
			ErrorLog.Printf("%v\n", err)
			break
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	return nil
}
