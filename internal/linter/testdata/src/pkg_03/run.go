package pkg03

func zrun() int {
	return 1
}

func yrun() int {
	return zrun() + zrun() // want "not recommended function" "not recommended function"
}

func xrun() int {
	return zrun()
}
