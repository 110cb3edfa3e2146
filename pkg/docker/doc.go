// Package docker runs disposable ClickHouse servers in Docker through
// testcontainers.
//
// The connector's integration tests use it to exercise the real driver against
// a live server, and it is handy for trying the CLI locally:
//
//	container := docker.NewWithOptions(docker.DockerOptions{Version: "25.7"})
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer container.Stop(ctx)
//
//	cfg, _ := container.ConnectionConfig(ctx)
//	conn, _ := connector.New(cfg)
//	defer conn.Close()
//
// An optional ConfigDir is mounted read-only as the server's config.d
// directory.
package docker
