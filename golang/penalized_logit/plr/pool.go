package plr

import "sync"

//Task is a unit of work executed by a Pool.
type Task interface {
	Execute()
}

//Pool runs tasks on a fixed number of goroutines.
type Pool struct {
	tasks chan Task
	wg    sync.WaitGroup
}

//NewPool starts threadsNum workers.
func NewPool(threadsNum int) *Pool {
	if threadsNum < 1 {
		threadsNum = 1
	}
	pool := &Pool{tasks: make(chan Task)}
	pool.wg.Add(threadsNum)
	for ind := 0; ind < threadsNum; ind++ {
		go pool.work()
	}
	return pool
}

func (pool *Pool) work() {
	defer pool.wg.Done()
	for task := range pool.tasks {
		task.Execute()
	}
}

//AddTask blocks until a worker takes the task.
func (pool *Pool) AddTask(task Task) {
	pool.tasks <- task
}

//Close tells the workers that no more tasks will come.
func (pool *Pool) Close() {
	close(pool.tasks)
}

//WaitAll waits for the workers to drain the queue. Close must be called first.
func (pool *Pool) WaitAll() {
	pool.wg.Wait()
}
