package main

import "github.com/go-mysql-org/go-mysql/mysql"

func mysqlPosition(file string, pos uint32) mysql.Position {
	return mysql.Position{Name: file, Pos: pos}
}
